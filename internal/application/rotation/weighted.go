package rotation

import (
	"math"
	"math/rand"
	"sort"
)

// raceShuffle orders candidates by a weight-biased random draw using the
// exponential-racing trick: each candidate draws key = −ln(U)/weight and the
// smallest keys come first. Heavier weights win more often, every candidate
// keeps a nonzero chance, and the whole draw is deterministic under a seeded
// RNG.
func raceShuffle(candidates []string, weights map[string]float64, rng *rand.Rand) []string {
	type raced struct {
		name string
		key  float64
	}
	out := make([]raced, 0, len(candidates))
	for _, name := range candidates {
		w := weights[name]
		if w <= 0 {
			w = 1
		}
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		out = append(out, raced{name: name, key: -math.Log(u) / w})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].key < out[j].key })

	names := make([]string, len(out))
	for i, r := range out {
		names[i] = r.name
	}
	return names
}

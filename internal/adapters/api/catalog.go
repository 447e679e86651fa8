package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adelacruz/artifacts-go/internal/domain/game"
)

const pageLimit = 100

// paged walks a paginated collection endpoint, invoking visit with each raw
// page until the server runs out of pages.
func (c *Client) paged(ctx context.Context, path string, visit func(data []byte) (int, error)) error {
	page := 1
	for {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		url := fmt.Sprintf("%s%spage=%d&size=%d", path, sep, page, pageLimit)

		var raw pageEnvelope
		if err := c.request(ctx, "GET", url, nil, &raw); err != nil {
			return fmt.Errorf("failed to fetch %s (page %d): %w", path, page, err)
		}
		count, err := visit(raw.Data)
		if err != nil {
			return err
		}
		if count < pageLimit || (raw.Pages > 0 && page >= raw.Pages) {
			return nil
		}
		page++
	}
}

type pageEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
	Pages int             `json:"pages"`
}

type itemPayload struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Level   int    `json:"level"`
	Effects []struct {
		Code  string `json:"code"`
		Value int    `json:"value"`
	} `json:"effects"`
	Craft *struct {
		Skill    string `json:"skill"`
		Level    int    `json:"level"`
		Quantity int    `json:"quantity"`
		Items    []struct {
			Code     string `json:"code"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
	} `json:"craft"`
}

func (p *itemPayload) toItem() game.Item {
	item := game.Item{
		Code:    p.Code,
		Name:    p.Name,
		Type:    p.Type,
		Subtype: p.Subtype,
		Level:   p.Level,
	}
	for _, e := range p.Effects {
		item.Effects = append(item.Effects, game.Effect{Code: e.Code, Value: e.Value})
	}
	if p.Craft != nil {
		craft := &game.Craft{
			Skill:    p.Craft.Skill,
			Level:    p.Craft.Level,
			Quantity: p.Craft.Quantity,
		}
		for _, m := range p.Craft.Items {
			craft.Items = append(craft.Items, game.ItemQuantity{Code: m.Code, Quantity: m.Quantity})
		}
		item.Craft = craft
	}
	return item
}

// FetchItems retrieves the full item catalog
func (c *Client) FetchItems(ctx context.Context) ([]game.Item, error) {
	var out []game.Item
	err := c.paged(ctx, "/items", func(data []byte) (int, error) {
		var payloads []itemPayload
		if err := json.Unmarshal(data, &payloads); err != nil {
			return 0, err
		}
		for i := range payloads {
			out = append(out, payloads[i].toItem())
		}
		return len(payloads), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type dropPayload struct {
	Code        string `json:"code"`
	Rate        int    `json:"rate"`
	MinQuantity int    `json:"min_quantity"`
	MaxQuantity int    `json:"max_quantity"`
}

func toDrops(raw []dropPayload) []game.Drop {
	out := make([]game.Drop, 0, len(raw))
	for _, d := range raw {
		out = append(out, game.Drop{
			Code:        d.Code,
			Rate:        d.Rate,
			MinQuantity: d.MinQuantity,
			MaxQuantity: d.MaxQuantity,
		})
	}
	return out
}

type monsterPayload struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Level int    `json:"level"`
	HP    int    `json:"hp"`

	AttackFire  int `json:"attack_fire"`
	AttackEarth int `json:"attack_earth"`
	AttackWater int `json:"attack_water"`
	AttackAir   int `json:"attack_air"`
	ResFire     int `json:"res_fire"`
	ResEarth    int `json:"res_earth"`
	ResWater    int `json:"res_water"`
	ResAir      int `json:"res_air"`

	CriticalStrike int `json:"critical_strike"`
	Initiative     int `json:"initiative"`

	Effects []struct {
		Code  string `json:"code"`
		Value int    `json:"value"`
	} `json:"effects"`
	Drops []dropPayload `json:"drops"`
}

func (p *monsterPayload) toMonster() game.Monster {
	monster := game.Monster{
		Code:        p.Code,
		Name:        p.Name,
		Type:        p.Type,
		Level:       p.Level,
		HP:          p.HP,
		AttackFire:  p.AttackFire,
		AttackEarth: p.AttackEarth,
		AttackWater: p.AttackWater,
		AttackAir:   p.AttackAir,
		ResFire:     p.ResFire,
		ResEarth:    p.ResEarth,
		ResWater:    p.ResWater,
		ResAir:      p.ResAir,
		CritChance:  p.CriticalStrike,
		Initiative:  p.Initiative,
		Drops:       toDrops(p.Drops),
	}
	for _, e := range p.Effects {
		monster.Effects = append(monster.Effects, game.Effect{Code: e.Code, Value: e.Value})
	}
	return monster
}

// FetchMonsters retrieves the full monster catalog
func (c *Client) FetchMonsters(ctx context.Context) ([]game.Monster, error) {
	var out []game.Monster
	err := c.paged(ctx, "/monsters", func(data []byte) (int, error) {
		var payloads []monsterPayload
		if err := json.Unmarshal(data, &payloads); err != nil {
			return 0, err
		}
		for i := range payloads {
			out = append(out, payloads[i].toMonster())
		}
		return len(payloads), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type resourcePayload struct {
	Code  string        `json:"code"`
	Name  string        `json:"name"`
	Skill string        `json:"skill"`
	Level int           `json:"level"`
	Drops []dropPayload `json:"drops"`
}

// FetchResources retrieves the full resource catalog
func (c *Client) FetchResources(ctx context.Context) ([]game.Resource, error) {
	var out []game.Resource
	err := c.paged(ctx, "/resources", func(data []byte) (int, error) {
		var payloads []resourcePayload
		if err := json.Unmarshal(data, &payloads); err != nil {
			return 0, err
		}
		for _, p := range payloads {
			out = append(out, game.Resource{
				Code:  p.Code,
				Name:  p.Name,
				Skill: p.Skill,
				Level: p.Level,
				Drops: toDrops(p.Drops),
			})
		}
		return len(payloads), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type mapPayload struct {
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Content *struct {
		Type string `json:"type"`
		Code string `json:"code"`
	} `json:"content"`
}

// FetchMaps retrieves every map tile that hosts content
func (c *Client) FetchMaps(ctx context.Context) ([]game.MapTile, error) {
	var out []game.MapTile
	err := c.paged(ctx, "/maps", func(data []byte) (int, error) {
		var payloads []mapPayload
		if err := json.Unmarshal(data, &payloads); err != nil {
			return 0, err
		}
		for _, p := range payloads {
			tile := game.MapTile{Name: p.Name, X: p.X, Y: p.Y}
			if p.Content != nil {
				tile.ContentType = p.Content.Type
				tile.ContentCode = p.Content.Code
			}
			out = append(out, tile)
		}
		return len(payloads), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchTaskRewards retrieves the item codes the task exchange can pay out
func (c *Client) FetchTaskRewards(ctx context.Context) ([]string, error) {
	var out []string
	err := c.paged(ctx, "/tasks/rewards", func(data []byte) (int, error) {
		var payloads []struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(data, &payloads); err != nil {
			return 0, err
		}
		for _, p := range payloads {
			out = append(out, p.Code)
		}
		return len(payloads), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchBankItems retrieves the account's full bank content
func (c *Client) FetchBankItems(ctx context.Context) ([]game.ItemQuantity, error) {
	var out []game.ItemQuantity
	err := c.paged(ctx, "/my/bank/items", func(data []byte) (int, error) {
		var payloads []struct {
			Code     string `json:"code"`
			Quantity int    `json:"quantity"`
		}
		if err := json.Unmarshal(data, &payloads); err != nil {
			return 0, err
		}
		for _, p := range payloads {
			out = append(out, game.ItemQuantity{Code: p.Code, Quantity: p.Quantity})
		}
		return len(payloads), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchAchievements retrieves the account's achievements with progress
func (c *Client) FetchAchievements(ctx context.Context, account string) ([]game.Achievement, error) {
	var out []game.Achievement
	path := fmt.Sprintf("/accounts/%s/achievements", account)
	err := c.paged(ctx, path, func(data []byte) (int, error) {
		var payloads []struct {
			Code    string `json:"code"`
			Name    string `json:"name"`
			Type    string `json:"type"`
			Target  string `json:"target"`
			Total   int    `json:"total"`
			Current int    `json:"current"`
		}
		if err := json.Unmarshal(data, &payloads); err != nil {
			return 0, err
		}
		for _, p := range payloads {
			out = append(out, game.Achievement{
				Code:          p.Code,
				Name:          p.Name,
				Type:          game.AchievementType(p.Type),
				ObjectiveCode: p.Target,
				Target:        p.Total,
				Current:       p.Current,
			})
		}
		return len(payloads), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

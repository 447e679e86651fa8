package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/adelacruz/artifacts-go/internal/infrastructure/config"
)

// statusRow mirrors the ops server's /status entries
type statusRow struct {
	Character string    `json:"character"`
	Status    string    `json:"status"`
	Phase     string    `json:"phase"`
	Routine   string    `json:"routine"`
	LatestLog string    `json:"latestLog"`
	UpdatedAt time.Time `json:"updatedAt"`
	Stale     bool      `json:"stale"`
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show every character loop of the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if !cfg.Metrics.Enabled {
				return fmt.Errorf("ops server is disabled; enable metrics to use status")
			}

			url := fmt.Sprintf("http://%s:%d/status", cfg.Metrics.Host, cfg.Metrics.Port)
			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(url)
			if err != nil {
				return fmt.Errorf("daemon unreachable at %s: %w", url, err)
			}
			defer resp.Body.Close()

			var rows []statusRow
			if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
				return fmt.Errorf("failed to decode status: %w", err)
			}

			fmt.Printf("%-16s %-9s %-8s %-18s %-6s %s\n",
				"CHARACTER", "STATUS", "PHASE", "ROUTINE", "STALE", "LAST")
			for _, row := range rows {
				stale := ""
				if row.Stale {
					stale = "yes"
				}
				fmt.Printf("%-16s %-9s %-8s %-18s %-6s %s\n",
					row.Character, row.Status, row.Phase, row.Routine, stale, row.LatestLog)
			}
			return nil
		},
	}
}

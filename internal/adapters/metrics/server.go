package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/adelacruz/artifacts-go/internal/application/scheduler"
)

// ReportProvider exposes the current per-character scheduler reports
type ReportProvider interface {
	Reports() []scheduler.Report
}

// Server is the ops HTTP surface: Prometheus metrics, a health check, and a
// JSON view of every character loop.
type Server struct {
	httpServer *http.Server
	log        *zap.SugaredLogger
}

// statusEntry is the JSON shape of one character on /status
type statusEntry struct {
	Character string    `json:"character"`
	Status    string    `json:"status"`
	Phase     string    `json:"phase"`
	Routine   string    `json:"routine,omitempty"`
	LatestLog string    `json:"latestLog,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	Stale     bool      `json:"stale"`
}

// NewServer creates the ops server bound to host:port
func NewServer(host string, port int, metricsPath string, provider ReportProvider, log *zap.SugaredLogger) *Server {
	r := chi.NewRouter()

	if Registry != nil {
		r.Handle(metricsPath, promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		reports := provider.Reports()
		entries := make([]statusEntry, 0, len(reports))
		for _, report := range reports {
			entries = append(entries, statusEntry{
				Character: report.Character,
				Status:    string(report.Status),
				Phase:     string(report.Phase),
				Routine:   report.Routine,
				LatestLog: report.LatestLog,
				UpdatedAt: report.UpdatedAt,
				Stale:     report.Stale,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start serves until Shutdown is called. Blocks.
func (s *Server) Start() error {
	s.log.Infow("ops server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

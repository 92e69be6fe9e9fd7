package http

import (
	"context"
	"fmt"

	"github.com/turtacn/phimark/internal/application/markup"
	"github.com/turtacn/phimark/internal/config"
	"github.com/turtacn/phimark/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phimark/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/phimark/internal/interfaces/http/handlers"
	"github.com/turtacn/phimark/internal/interfaces/http/middleware"
	"github.com/turtacn/phimark/internal/markup/trie"
)

// NewAPIServer wires the markup service, metrics and routes described by cfg
// into a ready-to-start Server.
func NewAPIServer(cfg *config.Config, logger logging.Logger, version string) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("http: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.MarkupMetrics
	)
	if !cfg.Metrics.Disabled {
		c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
			EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("http: metrics collector: %w", err)
		}
		collector = c
		metrics = prometheus.NewMarkupMetrics(c)
	}

	phrases := trie.New(cfg.Merge.Phrases...)
	svc := markup.NewService(phrases, metrics, logger)

	router := NewRouter(RouterConfig{
		MarkupHandler:    handlers.NewMarkupHandler(svc),
		HealthHandler:    handlers.NewHealthHandler(version, phraseChecker{phrases: phrases}),
		Logger:           logger,
		Logging:          middleware.DefaultLoggingConfig(),
		MetricsCollector: collector,
		Metrics:          metrics,
		MetricsPath:      cfg.Metrics.Path,
		Mode:             cfg.Server.Mode,
		MaxBodySize:      cfg.Server.MaxBodySize,
	})

	logger.Info("API server assembled",
		logging.String("addr", cfg.Server.Addr()),
		logging.Int("merge_phrases", phrases.Len()),
		logging.Bool("metrics", collector != nil),
		logging.Int64("max_body_size", cfg.Server.MaxBodySize),
	)
	return NewServer(cfg.Server, router, logger), nil
}

// phraseChecker reports the merge trie as unhealthy when it holds nothing.
type phraseChecker struct {
	phrases *trie.Trie
}

func (p phraseChecker) Name() string { return "merge_phrases" }

func (p phraseChecker) Check(context.Context) error {
	if p.phrases.Len() == 0 {
		return fmt.Errorf("no merge phrases loaded")
	}
	return nil
}

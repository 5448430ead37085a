package bootstrap

import (
	"log"

	"github.com/7pairs/twingo2/internal/config"
	"github.com/7pairs/twingo2/internal/metrics"
)

// initializeMetrics sets up the Prometheus recorder, or a no-op one when
// metrics are disabled
func initializeMetrics(cfg *config.Config) metrics.Recorder {
	if !cfg.MetricsEnabled {
		log.Printf("Prometheus metrics disabled")
	}
	return metrics.Init(cfg.MetricsEnabled)
}

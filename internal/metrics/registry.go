package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Register adds the state collector and poll metrics to reg.
func Register(reg prometheus.Registerer, sc *StateCollector, pm *PollMetrics) error {
	if err := reg.Register(sc); err != nil {
		return fmt.Errorf("failed to register state collector: %w", err)
	}
	for _, c := range pm.Collectors() {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register poll metrics: %w", err)
		}
	}
	return nil
}

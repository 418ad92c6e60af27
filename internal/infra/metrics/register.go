package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register queues collectors at package init time. Nothing touches the
// default registry until MustRegister runs.
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister installs every queued collector, exactly once. main calls it
// before the /metrics handler is mounted; tests never need to.
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}

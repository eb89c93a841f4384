package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	bootstrap "github.com/K-John/createrington-sub002"
)

var serviceUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "createrington",
	Name:      "service_up",
	Help:      "1 when a container-managed service reached ready, 0 when it failed.",
}, []string{"service"})

// observeServices mirrors container lifecycle notifications into Prometheus.
func observeServices(c *bootstrap.Container) {
	c.OnServiceReady(func(name string) {
		serviceUp.WithLabelValues(name).Set(1)
	})
	c.OnServiceFailed(func(name string, err error) {
		serviceUp.WithLabelValues(name).Set(0)
	})
}

// Package metrics exposes capability calls executed by compression contexts as prometheus metrics.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/outofforest/quadrant"
)

const (
	namespace      = "quadrant"
	operationLabel = "operation"
)

// New creates observer and registers its metrics.
func New(registerer prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capability_calls_total",
			Help:      "The number of calls made to the compression capability.",
		}, []string{operationLabel}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capability_errors_total",
			Help:      "The number of failed calls made to the compression capability.",
		}, []string{operationLabel}),
	}

	for _, c := range []prometheus.Collector{o.calls, o.errors} {
		if err := registerer.Register(c); err != nil {
			return nil, errors.Wrap(err, "registering metric failed")
		}
	}

	return o, nil
}

// Observer counts capability calls.
type Observer struct {
	calls  *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// Observe records the call.
func (o *Observer) Observe(op quadrant.Operation, err error) {
	labels := prometheus.Labels{operationLabel: op.String()}
	o.calls.With(labels).Inc()
	if err != nil {
		o.errors.With(labels).Inc()
	}
}

// Calls returns the counter of calls of the operation.
func (o *Observer) Calls(op quadrant.Operation) prometheus.Counter {
	return o.calls.With(prometheus.Labels{operationLabel: op.String()})
}

// Errors returns the counter of failed calls of the operation.
func (o *Observer) Errors(op quadrant.Operation) prometheus.Counter {
	return o.errors.With(prometheus.Labels{operationLabel: op.String()})
}

package metrics

import (
	"time"

	"github.com/joeydtaylor/vblocks/pkg/registry"
)

// InferenceObserver feeds dispatcher outcomes into the inference collectors.
type InferenceObserver struct{}

func (InferenceObserver) ObserveInference(kind registry.Kind, function, outcome string, took time.Duration) {
	inferenceCalls.WithLabelValues(string(kind), function, outcome).Inc()
	inferenceDuration.WithLabelValues(string(kind)).Observe(took.Seconds())
}

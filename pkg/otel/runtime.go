package otel

import (
	"time"

	hostmetrics "go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
)

// StartRuntimeMetrics starts Go runtime (memory, GC) and host (CPU, network,
// disk) metric collection through the global meter provider.
func StartRuntimeMetrics() error {
	if err := runtime.Start(
		runtime.WithMinimumReadMemStatsInterval(time.Second * 30),
	); err != nil {
		return err
	}

	if err := hostmetrics.Start(); err != nil {
		return err
	}

	return nil
}

// Package observability starts tracing and continuous profiling for the service.
package observability

import (
	"context"
	"errors"
	"strings"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/esports-match-sync/internal/config"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

// Telemetry owns the exporters started by Setup. The zero value is a no-op.
type Telemetry struct {
	flushTraces  func(context.Context) error
	stopProfiler func() error
}

// Setup configures the global OpenTelemetry provider through Uptrace and starts the
// Pyroscope profiler, each only when enabled. A profiler failure undoes tracing.
func Setup(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{}

	switch {
	case !cfg.UptraceEnabled:
		logger.Info("tracing disabled", "reason", "UPTRACE_ENABLED=false")
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		logger.Info("tracing disabled", "reason", "UPTRACE_DSN empty")
	default:
		uptrace.ConfigureOpentelemetry(
			uptrace.WithDSN(cfg.UptraceDSN),
			uptrace.WithServiceName(cfg.ServiceName),
			uptrace.WithServiceVersion(cfg.ServiceVersion),
			uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		)
		t.flushTraces = uptrace.Shutdown
		logger.Info("tracing enabled", "exporter", "uptrace", "service_version", cfg.ServiceVersion)
	}

	if !cfg.PyroscopeEnabled {
		logger.Info("profiling disabled", "reason", "PYROSCOPE_ENABLED=false")
		return t, nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              profilerTags(cfg),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
		},
	})
	if err != nil {
		_ = t.Shutdown(context.Background())
		return nil, err
	}
	t.stopProfiler = profiler.Stop
	logger.Info("profiling enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return t, nil
}

// profilerTags lets profiles be split by deployment and by store backend.
func profilerTags(cfg config.Config) map[string]string {
	tags := map[string]string{
		"env":     cfg.AppEnv,
		"service": cfg.ServiceName,
		"store":   cfg.StoreBackend,
	}
	if cfg.ServiceVersion != "" {
		tags["version"] = cfg.ServiceVersion
	}
	return tags
}

// Shutdown stops the profiler and flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.stopProfiler != nil {
		errs = append(errs, t.stopProfiler())
		t.stopProfiler = nil
	}
	if t.flushTraces != nil {
		errs = append(errs, t.flushTraces(ctx))
		t.flushTraces = nil
	}
	return errors.Join(errs...)
}

package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/esports-match-sync/internal/config"
	"github.com/riskibarqy/esports-match-sync/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_AllDisabled(t *testing.T) {
	telemetry, err := Setup(config.Config{ServiceName: "esports-match-sync", AppEnv: config.EnvDev}, logging.NewNop())
	require.NoError(t, err)
	assert.Nil(t, telemetry.flushTraces)
	assert.Nil(t, telemetry.stopProfiler)
	assert.NoError(t, telemetry.Shutdown(context.Background()))
}

func TestSetup_TracingWithoutDSNIsNoop(t *testing.T) {
	telemetry, err := Setup(config.Config{UptraceEnabled: true, UptraceDSN: "  "}, nil)
	require.NoError(t, err)
	assert.Nil(t, telemetry.flushTraces)
}

func TestTelemetry_ShutdownJoinsErrors(t *testing.T) {
	t.Parallel()

	errStop := errors.New("stop profiler")
	errFlush := errors.New("flush spans")
	telemetry := &Telemetry{
		stopProfiler: func() error { return errStop },
		flushTraces:  func(context.Context) error { return errFlush },
	}

	err := telemetry.Shutdown(context.Background())
	assert.ErrorIs(t, err, errStop)
	assert.ErrorIs(t, err, errFlush)
	assert.NoError(t, telemetry.Shutdown(context.Background()), "second shutdown is a no-op")

	var nilTelemetry *Telemetry
	assert.NoError(t, nilTelemetry.Shutdown(context.Background()))
}

func TestProfilerTags(t *testing.T) {
	t.Parallel()

	tags := profilerTags(config.Config{AppEnv: config.EnvProd, ServiceName: "esports-match-sync", StoreBackend: config.StoreRedis})
	assert.Equal(t, map[string]string{"env": "prod", "service": "esports-match-sync", "store": "redis"}, tags)

	tags = profilerTags(config.Config{ServiceVersion: "1.4.0"})
	assert.Equal(t, "1.4.0", tags["version"])
}

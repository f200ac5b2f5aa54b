package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]metricdata.Sum[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				sums[m.Name] = sum
			}
		}
	}
	return sums
}

func TestAuthMetrics_Counts(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewAuthMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.Login(ctx, OutcomeSuccess)
	m.Login(ctx, OutcomeFailure)
	m.Login(ctx, OutcomeFailure)
	m.Revoked(ctx, 3)
	m.Revoked(ctx, 0)
	m.AuditDropped(ctx)

	sums := collect(t, reader)

	logins := sums["auth.logins"]
	var failures int64
	for _, dp := range logins.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key("outcome")); ok && v.AsString() == OutcomeFailure {
			failures = dp.Value
		}
	}
	assert.Equal(t, int64(2), failures)
	require.Len(t, sums["auth.revoked_sessions"].DataPoints, 1)
	assert.Equal(t, int64(3), sums["auth.revoked_sessions"].DataPoints[0].Value)
	require.Len(t, sums["audit.dropped"].DataPoints, 1)
}

func TestAuthMetrics_NilIsNoop(t *testing.T) {
	var m *AuthMetrics
	assert.NotPanics(t, func() {
		m.Login(context.Background(), OutcomeSuccess)
		m.Refresh(context.Background(), OutcomeFailure)
		m.Registration(context.Background(), "patient")
		m.Revoked(context.Background(), 1)
		m.AuditDropped(context.Background())
	})
}

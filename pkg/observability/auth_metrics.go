package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels for auth counters
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuthMetrics counts session lifecycle events. A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	logins        metric.Int64Counter
	refreshes     metric.Int64Counter
	registrations metric.Int64Counter
	revocations   metric.Int64Counter
	auditDropped  metric.Int64Counter
}

// NewAuthMetrics registers the auth instruments on meter
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	var m AuthMetrics
	var err error

	if m.logins, err = meter.Int64Counter("auth.logins",
		metric.WithDescription("Login attempts by outcome")); err != nil {
		return nil, fmt.Errorf("failed to create auth.logins counter: %w", err)
	}
	if m.refreshes, err = meter.Int64Counter("auth.refreshes",
		metric.WithDescription("Refresh token rotations by outcome")); err != nil {
		return nil, fmt.Errorf("failed to create auth.refreshes counter: %w", err)
	}
	if m.registrations, err = meter.Int64Counter("auth.registrations",
		metric.WithDescription("Registered users by role")); err != nil {
		return nil, fmt.Errorf("failed to create auth.registrations counter: %w", err)
	}
	if m.revocations, err = meter.Int64Counter("auth.revoked_sessions",
		metric.WithDescription("Refresh token records deleted by logout or password reset")); err != nil {
		return nil, fmt.Errorf("failed to create auth.revoked_sessions counter: %w", err)
	}
	if m.auditDropped, err = meter.Int64Counter("audit.dropped",
		metric.WithDescription("Audit entries dropped because the buffer was full")); err != nil {
		return nil, fmt.Errorf("failed to create audit.dropped counter: %w", err)
	}

	return &m, nil
}

func (m *AuthMetrics) Login(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *AuthMetrics) Refresh(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *AuthMetrics) Registration(ctx context.Context, role string) {
	if m == nil {
		return
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role)))
}

func (m *AuthMetrics) Revoked(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.revocations.Add(ctx, int64(n))
}

func (m *AuthMetrics) AuditDropped(ctx context.Context) {
	if m == nil {
		return
	}
	m.auditDropped.Add(ctx, 1)
}

package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "mandate/pkg/platform/audit"
	"mandate/pkg/platform/audit/store/memory"
	"mandate/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func (failingStore) ListBySubject(context.Context, string) ([]audit.Event, error) {
	return nil, nil
}

func TestEmitEnrichesFromContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store, WithMetrics(NewMetrics(prometheus.NewRegistry())))

	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.7", "curl/8.0", "Other")

	err := pub.Emit(ctx, audit.Event{
		Action:  string(audit.EventMandateRejected),
		Subject: "mandate-1",
		Reason:  "incomplete",
	})
	require.NoError(t, err)

	events, err := pub.List(ctx, "mandate-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, "10.0.0.7", events[0].ClientIP)
	assert.Equal(t, "Other", events[0].Device)
}

func TestEmitRequiresActionAndSubject(t *testing.T) {
	pub := New(memory.NewInMemoryStore())
	assert.Error(t, pub.Emit(context.Background(), audit.Event{Subject: "x"}))
	assert.Error(t, pub.Emit(context.Background(), audit.Event{Action: "x"}))
}

func TestEmitFailsClosed(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	pub := New(failingStore{}, WithMetrics(m))

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventStaffCreated), Subject: "staff-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.persistFailures))
}

func TestCategoryMapping(t *testing.T) {
	assert.Equal(t, audit.CategoryCompliance, audit.EventMandateSuperAdminApproved.Category())
	assert.Equal(t, audit.CategorySecurity, audit.EventStaffLoginFailed.Category())
	assert.Equal(t, audit.CategoryOperations, audit.EventMandateSubmitted.Category())
	assert.Equal(t, audit.CategoryOperations, audit.AuditEvent("unknown").Category())
}

package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, mutate ...func(*RegistryParams)) *Registry {
	t.Helper()
	params := RegistryParams{
		Service:    newFakeStorefront(),
		StoreID:    1,
		SessionTTL: time.Minute,
	}
	for _, fn := range mutate {
		fn(&params)
	}
	r, err := NewRegistry(params)
	require.NoError(t, err)
	return r
}

func TestNewRegistryValidatesParams(t *testing.T) {
	_, err := NewRegistry(RegistryParams{StoreID: 1})
	require.Error(t, err)

	_, err = NewRegistry(RegistryParams{Service: newFakeStorefront()})
	require.Error(t, err)
}

func TestRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	r := newTestRegistry(t, func(p *RegistryParams) {
		p.Metrics = metrics.NewCheckoutMetrics(reg)
		p.DeliveryFeeMinor = 800
	})

	session, err := r.Create(ctx, CreateInput{DiningMode: enums.DiningModeDelivery})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID())
	require.Equal(t, 1, r.Len())
	require.Equal(t, 1.0, gatherGauge(t, reg, "checkout_sessions_active"))

	_, err = session.AddLine(bagel, 1, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1800), session.Pricing().PayableMinor)

	got, err := r.Get(session.ID())
	require.NoError(t, err)
	require.Same(t, session, got)

	require.NoError(t, r.Delete(ctx, session.ID()))
	require.Zero(t, r.Len())
	require.Equal(t, 0.0, gatherGauge(t, reg, "checkout_sessions_active"))

	_, err = r.Get(session.ID())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	require.True(t, pkgerrors.HasCode(r.Delete(ctx, session.ID()), pkgerrors.CodeNotFound))
}

func TestRegistryGetOwnedHidesOtherMembersSessions(t *testing.T) {
	r := newTestRegistry(t)

	session, err := r.Create(context.Background(), CreateInput{OwnerID: "u123"})
	require.NoError(t, err)
	require.Equal(t, "u123", session.Owner())

	got, err := r.GetOwned(session.ID(), "u123")
	require.NoError(t, err)
	require.Same(t, session, got)

	_, err = r.GetOwned(session.ID(), "u999")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestRegistryCreateRejectsInvalidMode(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Create(context.Background(), CreateInput{DiningMode: "drive-thru"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	require.Zero(t, r.Len())
}

func TestRegistrySweepExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := newTestRegistry(t)
	r.now = func() time.Time { return now }

	idle, err := r.Create(ctx, CreateInput{})
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	active, err := r.Create(ctx, CreateInput{})
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	removed, err := r.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = r.Get(idle.ID())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	_, err = r.Get(active.ID())
	require.NoError(t, err)
	require.False(t, idle.guard.Alive())
}

func TestRegistryCloseTearsDownAll(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	first, err := r.Create(ctx, CreateInput{})
	require.NoError(t, err)
	second, err := r.Create(ctx, CreateInput{TableNo: "B-2"})
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.Zero(t, r.Len())
	require.False(t, first.guard.Alive())
	require.False(t, second.guard.Alive())
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	r := newTestRegistry(t, func(p *RegistryParams) { p.SweepInterval = 5 * time.Millisecond })
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := r.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func gatherGauge(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("gauge %s not found", name)
	return 0
}

package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-checkout/internal/pricing"
	"github.com/angelmondragon/storefront-checkout/internal/storefront"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	defaultSessionTTL    = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// RegistryParams configure the in-memory session registry.
type RegistryParams struct {
	Service            storefront.Service
	Logger             *logger.Logger
	Metrics            *metrics.CheckoutMetrics
	Notifier           Notifier
	Validator          *validator.Validate
	StoreID            int64
	DeliveryFeeMinor   int64
	CreateOrderTimeout time.Duration
	PayOrderTimeout    time.Duration
	SessionTTL         time.Duration
	SweepInterval      time.Duration
}

// CreateInput describes a new checkout session.
type CreateInput struct {
	OwnerID    string
	DiningMode enums.DiningMode
	TableNo    string
}

// Registry owns the live checkout sessions.
type Registry struct {
	params RegistryParams
	calc   pricing.Calculator
	logg   *logger.Logger
	newID  func() string
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry builds a session registry.
func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Service == nil {
		return nil, fmt.Errorf("storefront service required")
	}
	if params.StoreID <= 0 {
		return nil, fmt.Errorf("store id must be positive")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Notifier == nil {
		params.Notifier = NewLogNotifier(params.Logger)
	}
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.SessionTTL <= 0 {
		params.SessionTTL = defaultSessionTTL
	}
	if params.SweepInterval <= 0 {
		params.SweepInterval = defaultSweepInterval
	}
	return &Registry{
		params:   params,
		calc:     pricing.NewCalculator(params.DeliveryFeeMinor),
		logg:     params.Logger,
		newID:    uuid.NewString,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}, nil
}

// Create opens a new session. The caller loads it.
func (r *Registry) Create(ctx context.Context, input CreateInput) (*Session, error) {
	session, err := NewSession(SessionParams{
		ID:                 r.newID(),
		OwnerID:            input.OwnerID,
		Service:            r.params.Service,
		Logger:             r.logg,
		Metrics:            r.params.Metrics,
		Notifier:           r.params.Notifier,
		Validator:          r.params.Validator,
		Calculator:         r.calc,
		StoreID:            r.params.StoreID,
		DiningMode:         input.DiningMode,
		TableNo:            input.TableNo,
		CreateOrderTimeout: r.params.CreateOrderTimeout,
		PayOrderTimeout:    r.params.PayOrderTimeout,
	})
	if err != nil {
		return nil, err
	}
	session.now = r.now
	session.lastActive = r.now()

	r.mu.Lock()
	r.sessions[session.ID()] = session
	r.mu.Unlock()

	r.params.Metrics.SessionOpened()
	r.logg.Info(r.logg.WithSessionID(ctx, session.ID()), "checkout session opened")
	return session, nil
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return session, nil
}

// GetOwned returns the session only if it belongs to ownerID. Sessions of
// other members are reported as not found.
func (r *Registry) GetOwned(id, ownerID string) (*Session, error) {
	session, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if session.Owner() != strings.TrimSpace(ownerID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return session, nil
}

// Delete tears a session down and forgets it.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	r.params.Metrics.SessionClosed()
	r.logg.Info(r.logg.WithSessionID(ctx, id), "checkout session closed")
	return session.Close()
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the configured TTL. Sessions
// with a payment in flight are kept.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.params.SessionTTL)

	r.mu.Lock()
	var expired []*Session
	for id, session := range r.sessions {
		if session.PayState().Status().InFlight() || !session.LastActive().Before(cutoff) {
			continue
		}
		expired = append(expired, session)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	var errs error
	for _, session := range expired {
		r.params.Metrics.SessionClosed()
		errs = multierr.Append(errs, session.Close())
	}
	if len(expired) > 0 {
		r.logg.Info(r.logg.WithField(ctx, "expired", len(expired)), "swept idle checkout sessions")
	}
	return len(expired), errs
}

// Run sweeps idle sessions on a fixed cadence until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.params.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				r.logg.Error(ctx, "session sweep failed", err)
			}
		}
	}
}

// Close tears down every session.
func (r *Registry) Close() error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	var errs error
	for _, session := range sessions {
		r.params.Metrics.SessionClosed()
		errs = multierr.Append(errs, session.Close())
	}
	return errs
}

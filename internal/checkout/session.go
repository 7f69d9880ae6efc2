package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-checkout/internal/cart"
	"github.com/angelmondragon/storefront-checkout/internal/coupons"
	"github.com/angelmondragon/storefront-checkout/internal/pricing"
	"github.com/angelmondragon/storefront-checkout/internal/storefront"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/metrics"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCreateOrderTimeout = 15 * time.Second
	defaultPayOrderTimeout    = 60 * time.Second

	msgEmptyCart           = "cart is empty"
	msgProfileMissing      = "member profile not loaded"
	msgInsufficientBalance = "insufficient balance"
	msgInvalidPayload      = "order could not be built from the cart"
	msgOutOfStock          = "some items are out of stock"
	msgCreateFailed        = "order creation failed, please retry"
	msgCreateTimeout       = "order creation timed out, please retry"
	msgNetworkError        = "network error during payment, please retry"
	msgPayCancelled        = "payment timed out or was cancelled"
	msgPaid                = "payment successful"
)

// SessionParams configure a checkout session.
type SessionParams struct {
	ID                 string
	OwnerID            string
	Service            storefront.Service
	Logger             *logger.Logger
	Metrics            *metrics.CheckoutMetrics
	Notifier           Notifier
	Validator          *validator.Validate
	Calculator         pricing.Calculator
	StoreID            int64
	DiningMode         enums.DiningMode
	TableNo            string
	CreateOrderTimeout time.Duration
	PayOrderTimeout    time.Duration
}

// Session is one member's checkout: a cart, the coupons and profile loaded
// for it, and the payment state machine. It is safe for concurrent use.
type Session struct {
	id            string
	owner         string
	svc           storefront.Service
	logg          *logger.Logger
	metrics       *metrics.CheckoutMetrics
	notifier      Notifier
	validate      *validator.Validate
	calc          pricing.Calculator
	storeID       int64
	tableNo       string
	createTimeout time.Duration
	payTimeout    time.Duration

	guard    *RaceGuard
	cart     *cart.Cart
	selector *coupons.Selector

	mu         sync.Mutex
	mode       enums.DiningMode
	method     enums.PaymentMethod
	user       *types.User
	coupons    []types.Coupon
	state      PayState
	lastActive time.Time
	closed     bool
	now        func() time.Time
}

// NewSession builds a checkout session.
func NewSession(params SessionParams) (*Session, error) {
	if params.Service == nil {
		return nil, fmt.Errorf("storefront service required")
	}
	if strings.TrimSpace(params.ID) == "" {
		return nil, fmt.Errorf("session id required")
	}
	if params.StoreID <= 0 {
		return nil, fmt.Errorf("store id must be positive")
	}
	tableNo := strings.TrimSpace(params.TableNo)
	mode := params.DiningMode
	if tableNo != "" {
		mode = enums.DiningModeScanOrder
	}
	if mode == "" {
		mode = enums.DiningModeDineIn
	}
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid dining mode %q", mode))
	}

	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = NewLogNotifier(logg)
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	calc := params.Calculator
	if calc.DeliveryFeeMinor <= 0 {
		calc = pricing.NewCalculator(pricing.FlatDeliveryFeeMinor)
	}
	createTimeout := params.CreateOrderTimeout
	if createTimeout <= 0 {
		createTimeout = defaultCreateOrderTimeout
	}
	payTimeout := params.PayOrderTimeout
	if payTimeout <= 0 {
		payTimeout = defaultPayOrderTimeout
	}

	s := &Session{
		id:            params.ID,
		owner:         strings.TrimSpace(params.OwnerID),
		svc:           params.Service,
		logg:          logg,
		metrics:       params.Metrics,
		notifier:      notifier,
		validate:      validate,
		calc:          calc,
		storeID:       params.StoreID,
		tableNo:       tableNo,
		createTimeout: createTimeout,
		payTimeout:    payTimeout,
		guard:         NewRaceGuard(),
		cart:          cart.New(),
		selector:      coupons.NewSelector(),
		mode:          mode,
		method:        enums.PaymentMethodWeChat,
		state:         Idle{},
		now:           time.Now,
	}
	s.lastActive = s.now()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Owner returns the id of the member the session was opened for.
func (s *Session) Owner() string {
	return s.owner
}

// TableNo returns the scanned table number, if any.
func (s *Session) TableNo() string {
	return s.tableNo
}

// Load fetches the member profile and coupons concurrently. Only the most
// recently started load may apply its result; older ones are dropped.
// A load dropped that way returns nil.
func (s *Session) Load(ctx context.Context) error {
	ctx = s.logg.WithSessionID(ctx, s.id)
	ticket := s.guard.Begin(ctx)
	defer ticket.Release()

	var (
		user      *types.User
		available []types.Coupon
	)
	g, gctx := errgroup.WithContext(ticket.Context())
	g.Go(func() error {
		u, err := s.svc.GetUserProfile(gctx)
		if err != nil {
			return fmt.Errorf("load member profile: %w", err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		cs, err := s.svc.GetCoupons(gctx)
		if err != nil {
			return fmt.Errorf("load coupons: %w", err)
		}
		available = cs
		return nil
	})

	if err := g.Wait(); err != nil {
		if !ticket.Valid() {
			s.discarded(ctx)
			return nil
		}
		s.logg.Error(ctx, "failed to load checkout data", err)
		return err
	}

	applied := ticket.Commit(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.user = user
		s.coupons = available
		s.selector.ApplyRecommendation(available, s.cart.Subtotal())
		s.touchLocked()
	})
	if !applied {
		s.discarded(ctx)
		return nil
	}
	s.logg.Debug(ctx, "checkout data loaded")
	return nil
}

func (s *Session) discarded(ctx context.Context) {
	s.logg.Info(ctx, "discarding superseded checkout load")
	s.metrics.IncLoadDiscarded()
}

// Pay runs order creation followed by payment and returns the resulting state.
// It never returns an error: every failure ends in Failed. Calls made while a
// payment is in flight, or after it succeeded, return the current state and do
// nothing.
func (s *Session) Pay(ctx context.Context) PayState {
	ctx = s.logg.WithSessionID(ctx, s.id)

	s.mu.Lock()
	current := s.state
	if current.Status().InFlight() || current.Status().IsTerminal() {
		s.mu.Unlock()
		return current
	}
	if err := s.transitionLocked(ctx, Creating{}); err != nil {
		s.mu.Unlock()
		return current
	}
	lines := s.cart.Lines()
	subtotal := s.cart.Subtotal()
	attempt := payAttempt{
		lines:  lines,
		coupon: s.selector.Effective(subtotal),
		method: s.method,
		mode:   s.mode,
		user:   copyUser(s.user),
	}
	attempt.pricing = s.calc.Compute(subtotal, attempt.coupon, attempt.mode)
	s.touchLocked()
	s.mu.Unlock()

	started := s.now()
	final := s.runPayment(ctx, attempt)
	s.finish(ctx, final, s.now().Sub(started))
	return final
}

type payAttempt struct {
	lines   []cart.Line
	coupon  *types.Coupon
	method  enums.PaymentMethod
	mode    enums.DiningMode
	user    *types.User
	pricing pricing.Result
}

func (s *Session) runPayment(ctx context.Context, attempt payAttempt) PayState {
	if len(attempt.lines) == 0 {
		return Failed{Reason: enums.PayFailUnknown, Message: msgEmptyCart}
	}
	if attempt.method.UsesBalance() {
		if attempt.user == nil {
			return Failed{Reason: enums.PayFailUnknown, Message: msgProfileMissing}
		}
		if attempt.user.BalanceMinor < attempt.pricing.PayableMinor {
			return Failed{Reason: enums.PayFailInsufficientBalance, Message: msgInsufficientBalance}
		}
	}

	payload, err := s.buildPayload(attempt)
	if err != nil {
		s.logg.Error(ctx, "failed to build order payload", err)
		return Failed{Reason: enums.PayFailUnknown, Message: msgInvalidPayload}
	}

	createCtx, cancel := context.WithTimeout(ctx, s.createTimeout)
	result, err := s.svc.CreateOrder(createCtx, payload)
	cancel()
	if err != nil {
		s.logg.Error(ctx, "create order failed", err)
		switch {
		case errors.Is(err, storefront.ErrOutOfStock):
			return Failed{Reason: enums.PayFailOutOfStock, Message: msgOutOfStock}
		case errors.Is(err, context.DeadlineExceeded):
			return Failed{Reason: enums.PayFailUnknown, Message: msgCreateTimeout}
		default:
			return Failed{Reason: enums.PayFailUnknown, Message: msgCreateFailed}
		}
	}
	if result == nil || !result.Success || strings.TrimSpace(result.OrderID) == "" {
		return Failed{Reason: enums.PayFailUnknown, Message: msgCreateFailed}
	}

	orderID := result.OrderID
	ctx = s.logg.WithOrderID(ctx, orderID)
	if err := s.transition(ctx, Paying{OrderID: orderID}); err != nil {
		return Failed{Reason: enums.PayFailUnknown, Message: msgCreateFailed}
	}

	payCtx, cancel := context.WithTimeout(ctx, s.payTimeout)
	paid, err := s.svc.PayOrder(payCtx, orderID)
	cancel()
	if err != nil {
		s.logg.Error(ctx, "pay order failed", err)
		return Failed{Reason: enums.PayFailNetworkError, Message: msgNetworkError}
	}
	if !paid {
		return Failed{Reason: enums.PayFailUserCancelled, Message: msgPayCancelled}
	}
	return Succeeded{OrderID: orderID}
}

func (s *Session) buildPayload(attempt payAttempt) (types.CreateOrderPayload, error) {
	items, err := cart.ToOrderItems(attempt.lines)
	if err != nil {
		return types.CreateOrderPayload{}, err
	}
	payload := types.CreateOrderPayload{
		StoreID: s.storeID,
		Type:    MapToOrderType(attempt.mode, s.tableNo),
		Items:   items,
		TableNo: s.tableNo,
	}
	if attempt.coupon != nil {
		id := attempt.coupon.ID
		payload.CouponID = &id
	}
	if err := s.validate.Struct(payload); err != nil {
		return types.CreateOrderPayload{}, fmt.Errorf("validate order payload: %w", err)
	}
	return payload, nil
}

func (s *Session) finish(ctx context.Context, final PayState, elapsed time.Duration) {
	s.mu.Lock()
	if err := s.transitionLocked(ctx, final); err != nil {
		s.mu.Unlock()
		return
	}
	s.touchLocked()
	s.mu.Unlock()

	note := Notification{SessionID: s.id, Status: final.Status()}
	var reason enums.PayFailReason
	switch st := final.(type) {
	case Succeeded:
		s.cart.Clear()
		note.OrderID = st.OrderID
		note.Message = msgPaid
		s.logg.Info(s.logg.WithOrderID(ctx, st.OrderID), "checkout paid")
	case Failed:
		reason = st.Reason
		note.Reason = st.Reason
		note.Message = st.Message
		s.logg.Warn(s.logg.WithField(ctx, "reason", st.Reason.String()), "checkout payment failed")
	}
	s.metrics.ObservePay(final.Status().String(), reason.String(), elapsed)
	s.notifier.Notify(ctx, note)
}

// Reset returns a failed session to idle. In any other state it does nothing.
func (s *Session) Reset(ctx context.Context) PayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status() != enums.PayStatusFailed {
		return s.state
	}
	_ = s.transitionLocked(s.logg.WithSessionID(ctx, s.id), Idle{})
	s.touchLocked()
	return s.state
}

func (s *Session) transition(ctx context.Context, next PayState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(ctx, next)
}

func (s *Session) transitionLocked(ctx context.Context, next PayState) error {
	if err := checkTransition(s.state, next); err != nil {
		s.logg.Error(ctx, "rejected payment state transition", err)
		return err
	}
	s.state = next
	return nil
}

// AddLine adds a product to the cart. The cart is frozen once payment starts.
func (s *Session) AddLine(product cart.Product, quantity int, spec map[string]string) (cart.Line, error) {
	if err := s.ensureEditable(); err != nil {
		return cart.Line{}, err
	}
	return s.cart.AddLine(product, quantity, spec)
}

// RemoveLine drops a cart line.
func (s *Session) RemoveLine(lineID string) error {
	if err := s.ensureEditable(); err != nil {
		return err
	}
	s.cart.RemoveLine(lineID)
	return nil
}

// Reorder adds the items of a past order to the cart.
func (s *Session) Reorder(items []types.OrderItem) error {
	if err := s.ensureEditable(); err != nil {
		return err
	}
	return s.cart.Reorder(items)
}

func (s *Session) ensureEditable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.state.Status()
	if status.InFlight() || status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cart is locked while payment is %s", status)).
			WithDetails(map[string]any{"status": status})
	}
	s.touchLocked()
	return nil
}

// SetDiningMode changes the fulfillment channel.
func (s *Session) SetDiningMode(mode enums.DiningMode) error {
	if !mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid dining mode %q", mode))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.touchLocked()
	return nil
}

// SetPaymentMethod changes how the member will pay.
func (s *Session) SetPaymentMethod(method enums.PaymentMethod) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.method = method
	s.touchLocked()
	return nil
}

// SetSelectedCoupon records the member's manual coupon choice. A nil id means
// "no coupon". After this call recommendations never replace the selection,
// even when the choice itself is rejected.
func (s *Session) SetSelectedCoupon(couponID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector.MarkTouched()
	if couponID == nil {
		s.selector.Select(nil)
		s.touchLocked()
		return nil
	}
	for i := range s.coupons {
		if s.coupons[i].ID != *couponID {
			continue
		}
		if !s.coupons[i].MeetsMinimumSpend(s.cart.Subtotal()) {
			return pkgerrors.New(pkgerrors.CodeValidation, "coupon minimum spend not met").
				WithDetails(map[string]any{"couponId": *couponID, "minSpendCent": s.coupons[i].MinimumSpendMinor})
		}
		c := s.coupons[i]
		s.selector.Select(&c)
		s.touchLocked()
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("coupon %d not found", *couponID))
}

// Pricing prices the current cart with the effective coupon and dining mode.
func (s *Session) Pricing() pricing.Result {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()
	subtotal := s.cart.Subtotal()
	return s.calc.Compute(subtotal, s.selector.Effective(subtotal), mode)
}

// Coupons partitions the loaded coupons against the current subtotal.
func (s *Session) Coupons() (eligible, ineligible []types.Coupon) {
	s.mu.Lock()
	available := s.coupons
	s.mu.Unlock()
	return coupons.Partition(available, s.cart.Subtotal())
}

// SelectedCoupon returns the selected coupon, which may not currently apply.
func (s *Session) SelectedCoupon() *types.Coupon {
	return s.selector.Selected()
}

// DiningMode returns the selected dining mode.
func (s *Session) DiningMode() enums.DiningMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// OrderType is the order type a payment would be created with right now.
func (s *Session) OrderType() enums.OrderType {
	return MapToOrderType(s.DiningMode(), s.tableNo)
}

// PaymentMethod returns the selected payment method.
func (s *Session) PaymentMethod() enums.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

// PayState returns the current payment state.
func (s *Session) PayState() PayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns a copy of the loaded member profile, or nil before the first load.
func (s *Session) User() *types.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

// Lines returns a copy of the cart lines.
func (s *Session) Lines() []cart.Line {
	return s.cart.Lines()
}

// View is a consistent snapshot of everything a checkout page renders.
type View struct {
	ID             string
	DiningMode     enums.DiningMode
	OrderType      enums.OrderType
	TableNo        string
	PaymentMethod  enums.PaymentMethod
	Lines          []cart.Line
	Count          int
	Pricing        pricing.Result
	User           *types.User
	Eligible       []types.Coupon
	Ineligible     []types.Coupon
	SelectedCoupon *types.Coupon
	CouponTouched  bool
	PayState       PayState
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.cart.Lines()
	var subtotal int64
	count := 0
	for _, line := range lines {
		subtotal += line.TotalMinor()
		count += line.Quantity
	}
	eligible, ineligible := coupons.Partition(s.coupons, subtotal)

	return View{
		ID:             s.id,
		DiningMode:     s.mode,
		OrderType:      MapToOrderType(s.mode, s.tableNo),
		TableNo:        s.tableNo,
		PaymentMethod:  s.method,
		Lines:          lines,
		Count:          count,
		Pricing:        s.calc.Compute(subtotal, s.selector.Effective(subtotal), s.mode),
		User:           copyUser(s.user),
		Eligible:       eligible,
		Ineligible:     ineligible,
		SelectedCoupon: s.selector.Selected(),
		CouponTouched:  s.selector.Touched(),
		PayState:       s.state,
	}
}

// Close tears the session down; any in-progress load is cancelled and its
// result dropped.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("session %s already closed", s.id))
	}
	s.closed = true
	s.mu.Unlock()

	s.guard.Close()
	return nil
}

// LastActive is when the session was last touched by a caller.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touchLocked() {
	s.lastActive = s.now()
}

func copyUser(u *types.User) *types.User {
	if u == nil {
		return nil
	}
	out := *u
	return &out
}

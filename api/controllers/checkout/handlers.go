package checkout

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	checkoutdto "github.com/angelmondragon/storefront-checkout/api/controllers/checkout/dto"
	"github.com/angelmondragon/storefront-checkout/api/middleware"
	"github.com/angelmondragon/storefront-checkout/api/responses"
	"github.com/angelmondragon/storefront-checkout/api/validators"
	"github.com/angelmondragon/storefront-checkout/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-checkout/internal/checkout"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
)

const maxTableNoLength = 16

// CreateSession opens a checkout session for the caller, seeds its cart and
// loads the member profile and coupons.
func CreateSession(reg *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout registry unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload checkoutdto.CreateSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var mode enums.DiningMode
		if payload.DiningMode != "" {
			parsed, err := enums.ParseDiningMode(payload.DiningMode)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dining mode"))
				return
			}
			mode = parsed
		}

		session, err := reg.Create(r.Context(), checkoutsvc.CreateInput{
			OwnerID:    userID,
			DiningMode: mode,
			TableNo:    validators.SanitizeString(payload.TableNo, maxTableNoLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, session.ID())
		}

		if err := seedCart(session, payload); err != nil {
			_ = reg.Delete(ctx, session.ID())
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := reload(ctx, session, logg); err != nil {
			_ = reg.Delete(ctx, session.ID())
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSessionView(session.View()))
	}
}

// GetSession renders the caller's session.
func GetSession(reg *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r, reg, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, newSessionView(session.View()))
	}
}

// AddLine adds a product to the cart and refreshes coupons for the new subtotal.
func AddLine(reg *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r, reg, logg)
		if !ok {
			return
		}

		var payload checkoutdto.AddLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := session.AddLine(toProduct(payload), payload.Quantity, payload.Spec); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := reload(r.Context(), session, logg); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionView(session.View()))
	}
}

// RemoveLine drops a cart line by its line id. Line ids contain reserved
// characters, so the path segment may arrive escaped.
func RemoveLine(reg *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r, reg, logg)
		if !ok {
			return
		}

		lineID, err := url.PathUnescape(chi.URLParam(r, "lineID"))
		if err != nil || strings.TrimSpace(lineID) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid line id"))
			return
		}

		if err := session.RemoveLine(lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := reload(r.Context(), session, logg); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionView(session.View()))
	}
}

func SetDiningMode(reg *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r, reg, logg)
		if !ok {
			return
		}

		var payload checkoutdto.DiningModeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode, err := enums.ParseDiningMode(payload.DiningMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dining mode"))
			return
		}
		if err := session.SetDiningMode(mode); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionView(session.View()))
	}
}

func SetPaymentMethod(reg *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r, reg, logg)
		if !ok {
			return
		}

		var payload checkoutdto.PaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}
		if err := session.SetPaymentMethod(method); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionView(session.View()))
	}
}

// SetCoupon records the member's manual coupon choice.
func SetCoupon(reg *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r, reg, logg)
		if !ok {
			return
		}

		var payload checkoutdto.CouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := session.SetSelectedCoupon(payload.CouponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionView(session.View()))
	}
}

// Pay runs order creation and payment. The outcome, failures included, is
// reported in the payment section of the view. Payment keeps running if the
// client disconnects.
func Pay(reg *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r, reg, logg)
		if !ok {
			return
		}

		session.Pay(context.WithoutCancel(r.Context()))
		responses.WriteSuccess(w, newSessionView(session.View()))
	}
}

// Reset returns a failed payment to idle and refreshes coupons and profile.
// Resetting an idle session is a no-op.
func Reset(reg *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r, reg, logg)
		if !ok {
			return
		}

		if state := session.Reset(r.Context()); state.Status() != enums.PayStatusIdle {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "only a failed payment can be reset").
				WithDetails(map[string]any{"status": state.Status()}))
			return
		}
		if err := reload(r.Context(), session, logg); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionView(session.View()))
	}
}

// DeleteSession tears the caller's session down.
func DeleteSession(reg *checkoutsvc.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(w, r, reg, logg)
		if !ok {
			return
		}
		if err := reg.Delete(r.Context(), session.ID()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": session.ID(), "status": "closed"})
	}
}

func sessionFromRequest(w http.ResponseWriter, r *http.Request, reg *checkoutsvc.Registry, logg *logger.Logger) (*checkoutsvc.Session, bool) {
	if reg == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout registry unavailable"))
		return nil, false
	}
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return nil, false
	}
	session, err := reg.GetOwned(chi.URLParam(r, "sessionID"), userID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	return session, true
}

func seedCart(session *checkoutsvc.Session, payload checkoutdto.CreateSessionRequest) error {
	for _, line := range payload.Lines {
		if _, err := session.AddLine(toProduct(line), line.Quantity, line.Spec); err != nil {
			return err
		}
	}
	if len(payload.ReorderItems) > 0 {
		if err := session.Reorder(payload.ReorderItems); err != nil {
			if pkgerrors.As(err) != nil {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reorder items")
		}
	}
	return nil
}

// reload refreshes profile and coupons after a cart change. Only an expired
// storefront credential fails the request; other load failures leave the
// previous data in place.
func reload(ctx context.Context, session *checkoutsvc.Session, logg *logger.Logger) error {
	err := session.Load(ctx)
	if err == nil {
		return nil
	}
	if pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		return err
	}
	if logg != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "checkout data refresh failed")
	}
	return nil
}

func toProduct(line checkoutdto.AddLineRequest) cart.Product {
	return cart.Product{
		ID:         line.ProductID,
		Name:       strings.TrimSpace(line.Name),
		PriceMinor: line.UnitPriceCents,
	}
}

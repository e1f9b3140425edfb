// Package billing creates Stripe checkout sessions for plan orders and
// turns completed sessions into subscriptions.
package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
)

var ErrNotConfigured = errors.New("stripe is not configured")

type StripeService struct {
	db            *gorm.DB
	webhookSecret string
	successURL    string
	cancelURL     string
	sc            *client.API
}

// NewStripeFromConfig returns a configured service, or nil when no
// secret key is set; callers must treat a nil service as payments off.
func NewStripeFromConfig(cfg *config.Config, db *gorm.DB) *StripeService {
	if cfg.StripeSecretKey == "" {
		return nil
	}
	sc := &client.API{}
	sc.Init(cfg.StripeSecretKey, nil)
	return &StripeService{
		db:            db,
		webhookSecret: cfg.StripeWebhookSecret,
		successURL:    cfg.StripeSuccessURL,
		cancelURL:     cfg.StripeCancelURL,
		sc:            sc,
	}
}

// ensureProductAndPrice lazily creates the Stripe product and price
// for a paid plan and stores their IDs on the plan record.
func (s *StripeService) ensureProductAndPrice(plan *models.Plan) error {
	if plan.StripeProductID == "" {
		product, err := s.sc.Products.New(&stripe.ProductParams{Name: stripe.String(plan.Name)})
		if err != nil {
			return err
		}
		plan.StripeProductID = product.ID
	}
	if plan.StripePriceID == "" {
		price, err := s.sc.Prices.New(&stripe.PriceParams{
			Product:    stripe.String(plan.StripeProductID),
			Currency:   stripe.String(plan.Currency),
			UnitAmount: stripe.Int64(int64(plan.Price * 100)),
			Recurring:  &stripe.PriceRecurringParams{Interval: stripe.String(plan.Interval)},
		})
		if err != nil {
			return err
		}
		plan.StripePriceID = price.ID
	}
	return s.db.Save(plan).Error
}

// CreateCheckoutSession opens a Stripe Checkout session for a pending
// order and returns its URL and ID. The order reference travels in the
// session metadata so the webhook can complete it.
func (s *StripeService) CreateCheckoutSession(order *models.Order, plan *models.Plan) (string, string, error) {
	if s == nil {
		return "", "", ErrNotConfigured
	}
	if err := s.ensureProductAndPrice(plan); err != nil {
		return "", "", err
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(plan.StripePriceID),
			Quantity: stripe.Int64(1),
		}},
		Metadata: map[string]string{
			"order_reference": order.Reference,
			"user_id":         strconv.Itoa(int(order.UserID)),
			"plan_id":         strconv.Itoa(int(order.PlanID)),
		},
	}
	session, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", "", err
	}
	return session.URL, session.ID, nil
}

// HandleWebhook consumes a Stripe webhook payload. The signature is
// verified when a webhook secret is configured. Only
// checkout.session.completed is acted on; other events are ignored.
func (s *StripeService) HandleWebhook(payload []byte, signature string) error {
	if s == nil {
		return ErrNotConfigured
	}
	if s.webhookSecret != "" {
		if _, err := webhook.ConstructEvent(payload, signature, s.webhookSecret); err != nil {
			return fmt.Errorf("invalid webhook signature: %w", err)
		}
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				Metadata map[string]string `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return err
	}
	if event.Type != "checkout.session.completed" {
		return nil
	}

	reference := event.Data.Object.Metadata["order_reference"]
	if reference == "" {
		return errors.New("webhook metadata missing order_reference")
	}
	return s.CompleteOrder(reference)
}

// ConfirmSession queries Stripe for a session and, when it completed,
// finalizes the matching order. Safe to call repeatedly.
func (s *StripeService) ConfirmSession(sessionID string) (bool, error) {
	if s == nil {
		return false, ErrNotConfigured
	}
	session, err := s.sc.CheckoutSessions.Get(sessionID, nil)
	if err != nil {
		return false, err
	}
	if session.Status != stripe.CheckoutSessionStatusComplete {
		return false, nil
	}
	reference := session.Metadata["order_reference"]
	if reference == "" {
		return false, errors.New("session metadata missing order_reference")
	}
	return true, s.CompleteOrder(reference)
}

// CompleteOrder finalizes a pending order. Idempotent: an already
// completed order is left alone.
func (s *StripeService) CompleteOrder(reference string) error {
	return ActivateOrder(s.db, reference)
}

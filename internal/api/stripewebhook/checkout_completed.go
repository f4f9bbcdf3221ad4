package stripewebhooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/subscription"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kidcanvas/internal/domain/billing"
	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/users"
	infrastripe "kidcanvas/internal/infra/stripe"
)

func (h *Handler) handleCheckoutSessionCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("subscription")
	params.AddExpand("customer")
	params.AddExpand("invoice")
	params.Context = ctx

	fullSession, err := checkoutsession.Get(session.ID, params)
	if err != nil {
		return fmt.Errorf("failed to fetch expanded checkout session: %w", err)
	}
	if fullSession.Subscription == nil || fullSession.Subscription.ID == "" {
		return errors.New("checkout session missing subscription")
	}
	subscriptionID := fullSession.Subscription.ID

	subData, err := subscription.Get(subscriptionID, &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}
	if subData == nil || subData.Items == nil || len(subData.Items.Data) == 0 || subData.Items.Data[0].Price == nil {
		return errors.New("subscription has no price items")
	}

	userID, err := userIDFromSubscriptionOrRef(subData.Metadata, fullSession.ClientReferenceID)
	if err != nil {
		return err
	}

	db := h.db.WithContext(ctx)

	var user users.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	priceID := subData.Items.Data[0].Price.ID
	var plan plans.Plan
	if err := db.Where("stripe_price_id = ?", priceID).First(&plan).Error; err != nil {
		return fmt.Errorf("plan not found for stripe price_id=%s: %w", priceID, err)
	}

	now := time.Now()
	periodEnd := time.Unix(subData.CurrentPeriodEnd, 0)

	updates := map[string]interface{}{
		"plan_id":                    plan.ID,
		"subscription_id":            subscriptionID,
		"subscription_start":         now,
		"subscription_end":           periodEnd,
		"current_period_end":         periodEnd,
		"stripe_subscription_status": string(subData.Status),
		"trial_start_at":             nil,
		"trial_end_at":               nil,
	}
	if fullSession.Customer != nil && fullSession.Customer.ID != "" {
		updates["stripe_customer_id"] = fullSession.Customer.ID
	}

	payment := billing.Payment{
		UserID:               user.ID,
		PlanID:               &plan.ID,
		StripeSessionID:      fullSession.ID,
		StripeSubscriptionID: &subscriptionID,
		AmountEUR:            infrastripe.Cents(fullSession.AmountTotal),
		Status:               string(fullSession.PaymentStatus),
	}
	if inv := fullSession.Invoice; inv != nil && inv.ID != "" {
		payment.InvoiceID = &inv.ID
		if inv.HostedInvoiceURL != "" {
			payment.ReceiptURL = &inv.HostedInvoiceURL
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&users.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update user after checkout: %w", err)
		}
		// Stripe redelivers events; the session id keeps the ledger idempotent.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// one live subscription per user
	if user.SubscriptionId != nil && *user.SubscriptionId != "" && *user.SubscriptionId != subscriptionID {
		if _, err := subscription.Cancel(*user.SubscriptionId, nil); err != nil {
			h.logger.Error(err, "StripeWebhook - checkout - cancel previous subscription=%s", *user.SubscriptionId)
		}
	}

	return nil
}

func userIDFromSubscriptionOrRef(md map[string]string, clientRef string) (string, error) {
	id := userIDFromMetadata(md)
	if id != "" {
		return id, nil
	}
	if clientRef == "" {
		return "", errors.New("missing user_id (metadata.user_id or client_reference_id)")
	}
	if _, err := uuid.Parse(clientRef); err != nil {
		return "", fmt.Errorf("invalid user_id %q: %w", clientRef, err)
	}
	return clientRef, nil
}

func userIDFromMetadata(md map[string]string) string {
	s := md["user_id"]
	if _, err := uuid.Parse(s); err != nil {
		return ""
	}
	return s
}

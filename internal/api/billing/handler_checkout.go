package billing

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	portalSession "github.com/stripe/stripe-go/v75/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	customer "github.com/stripe/stripe-go/v75/customer"
	"gorm.io/gorm"

	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/users"
)

func (h *Handler) currentUser(c *gin.Context) (users.User, bool) {
	var user users.User
	err := h.db.WithContext(c.Request.Context()).Where("id = ?", middleware.UserID(c)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return user, false
	}
	if err != nil {
		respond.DB(c, h.logger, "Failed to load user", err)
		return user, false
	}
	return user, true
}

// POST /create-checkout-session
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body struct {
		PriceID string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price_id"})
		return
	}
	if !h.configured(c) {
		return
	}

	// allow-list price id
	var plan plans.Plan
	if err := h.db.WithContext(c.Request.Context()).Where("stripe_price_id = ?", body.PriceID).First(&plan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan/price_id"})
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email first"})
		return
	}

	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		cus, err := customer.New(&stripe.CustomerParams{
			Email:    stripe.String(user.Email),
			Name:     stripe.String(user.Name),
			Metadata: map[string]string{"user_id": user.ID},
		})
		if err != nil {
			h.logger.Error(err, "BillingHandler - CreateCheckoutSession - customer.New user=%s", user.ID)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create Stripe customer"})
			return
		}

		if err := h.db.WithContext(c.Request.Context()).Model(&users.User{}).
			Where("id = ?", user.ID).
			Update("stripe_customer_id", cus.ID).Error; err != nil {
			respond.DB(c, h.logger, "Failed to store Stripe customer", err)
			return
		}
		user.StripeCustomerID = stripe.String(cus.ID)
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(h.appURL + "/billing?success=1"),
		CancelURL:  stripe.String(h.appURL + "/billing?canceled=1"),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(*user.StripeCustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(plan.StripePriceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(user.ID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"user_id": user.ID,
				"plan_id": fmt.Sprint(plan.ID),
			},
		},
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		h.logger.Error(err, "BillingHandler - CreateCheckoutSession - checkoutsession.New user=%s", user.ID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL})
}

// POST /billing-portal
func (h *Handler) CreateBillingPortal(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No Stripe customer yet (subscribe first)"})
		return
	}

	portal, err := portalSession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*user.StripeCustomerID),
		ReturnURL: stripe.String(h.appURL + "/billing"),
	})
	if err != nil {
		h.logger.Error(err, "BillingHandler - CreateBillingPortal - user=%s", user.ID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not create billing portal session", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": portal.URL})
}

package plans

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/price"
	"gorm.io/gorm"

	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/infra/stripe"
	"kidcanvas/pkg/logger"
)

type Handler struct {
	db        *gorm.DB
	secretKey string
	productID string
	logger    logger.Interface
}

func New(db *gorm.DB, secretKey, productID string, l logger.Interface) *Handler {
	return &Handler{db: db, secretKey: secretKey, productID: productID, logger: l}
}

// planFromPrice maps a recurring EUR price onto a catalog plan. Metadata keys
// "plan", "tier" and "artwork_limit" override the product defaults.
func planFromPrice(p *stripego.Price, productID string) (plans.Plan, bool) {
	if p == nil || !p.Active || p.Recurring == nil || p.Product == nil || !p.Product.Active {
		return plans.Plan{}, false
	}
	if productID != "" && p.Product.ID != productID {
		return plans.Plan{}, false
	}
	if string(p.Currency) != "eur" || p.Metadata["visible"] == "false" {
		return plans.Plan{}, false
	}

	plan := plans.Plan{
		Name:            p.Product.Name,
		PriceEUR:        stripe.Cents(p.UnitAmount),
		StripePriceID:   p.ID,
		StripeProductID: p.Product.ID,
		Interval:        string(p.Recurring.Interval),
	}
	if v := p.Metadata["plan"]; v != "" {
		plan.Name = v
	}
	if v := strings.ToLower(strings.TrimSpace(p.Metadata["tier"])); v != "" {
		plan.Tier = v
	} else {
		plan.Tier = plans.PlanTier(&plan)
	}
	if v, err := strconv.Atoi(p.Metadata["artwork_limit"]); err == nil && v > 0 {
		plan.ArtworkLimit = v
	}
	return plan, true
}

// POST /admin/sync-plans
func (h *Handler) SyncPlansFromStripe(c *gin.Context) {
	if err := stripe.Configure(h.secretKey); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Billing is not configured"})
		return
	}

	params := &stripego.PriceListParams{}
	params.Active = stripego.Bool(true)
	params.Type = stripego.String("recurring")
	params.AddExpand("data.product")
	params.Context = c.Request.Context()

	it := price.List(params)
	db := h.db.WithContext(c.Request.Context())

	var created, updated, skipped int
	for it.Next() {
		fresh, ok := planFromPrice(it.Price(), h.productID)
		if !ok {
			skipped++
			continue
		}

		var existing plans.Plan
		err := db.Where("stripe_price_id = ?", fresh.StripePriceID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&fresh).Error; err != nil {
				respond.DB(c, h.logger, "Failed to create plan", err)
				return
			}
			created++
		case err != nil:
			respond.DB(c, h.logger, "Failed to load plan", err)
			return
		default:
			existing.Name = fresh.Name
			existing.PriceEUR = fresh.PriceEUR
			existing.Interval = fresh.Interval
			existing.StripeProductID = fresh.StripeProductID
			existing.Tier = fresh.Tier
			existing.ArtworkLimit = fresh.ArtworkLimit
			if err := db.Save(&existing).Error; err != nil {
				respond.DB(c, h.logger, "Failed to update plan", err)
				return
			}
			updated++
		}
	}

	if err := it.Err(); err != nil {
		h.logger.Error(err, "PlansHandler - SyncPlansFromStripe - price.List")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch Stripe prices", "details": err.Error()})
		return
	}

	h.logger.Info("PlansHandler - SyncPlansFromStripe - created=%d updated=%d skipped=%d", created, updated, skipped)
	c.JSON(http.StatusOK, gin.H{
		"synced":  created + updated,
		"created": created,
		"updated": updated,
		"skipped": skipped,
	})
}

// GET /plans
func (h *Handler) ListPlans(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&plans.Plan{})
	if h.productID != "" {
		q = q.Where("stripe_product_id = ?", h.productID)
	}

	list := []plans.Plan{}
	if err := q.Order("price_eur ASC").Find(&list).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load plans", err)
		return
	}

	c.JSON(http.StatusOK, list)
}

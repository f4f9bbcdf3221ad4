package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/billing"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/domain/users"
	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/logger"
)

type AdminUser struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              string     `json:"role"`
	AuthProvider      string     `json:"auth_provider"`
	IsVerified        bool       `json:"is_verified"`
	PlanName          *string    `json:"plan_name,omitempty"`
	StripeCustomerID  *string    `json:"stripe_customer_id,omitempty"`
	StripeSubID       *string    `json:"stripe_subscription_id,omitempty"`
	SubscriptionStart *time.Time `json:"subscription_start,omitempty"`
	SubscriptionEnd   *time.Time `json:"subscription_end,omitempty"`
}

type AdminPayment struct {
	ID         uint    `json:"id"`
	Email      string  `json:"email"`
	PlanName   *string `json:"plan_name,omitempty"`
	AmountEUR  float64 `json:"amount_eur"`
	Status     string  `json:"status"`
	InvoiceID  *string `json:"invoice_id,omitempty"`
	ReceiptURL *string `json:"receipt_url,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers    int64          `json:"total_users"`
	TotalFamilies int64          `json:"total_families"`
	TotalArtworks int64          `json:"total_artworks"`
	TotalRevenue  float64        `json:"total_revenue"`
	RecentRevenue float64        `json:"recent_revenue"`
	UsersPerPlan  map[string]int `json:"users_per_plan"`
}

type Handler struct {
	db     *gorm.DB
	logger logger.Interface
}

func New(db *gorm.DB, l logger.Interface) *Handler {
	return &Handler{db: db, logger: l}
}

func toAdminUser(u users.User) AdminUser {
	var planName *string
	if u.Plan != nil {
		planName = &u.Plan.Name
	}
	return AdminUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		AuthProvider:      u.AuthProvider,
		IsVerified:        u.IsVerified,
		PlanName:          planName,
		StripeCustomerID:  u.StripeCustomerID,
		StripeSubID:       u.SubscriptionId,
		SubscriptionStart: u.SubscriptionStart,
		SubscriptionEnd:   u.SubscriptionEnd,
	}
}

// GET /admin/users
func (h *Handler) ListAllUsers(c *gin.Context) {
	var list []users.User
	if err := h.db.WithContext(c.Request.Context()).Preload("Plan").Order("created_at DESC").Find(&list).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load users", err)
		return
	}

	out := make([]AdminUser, 0, len(list))
	for _, u := range list {
		out = append(out, toAdminUser(u))
	}
	c.JSON(http.StatusOK, out)
}

// GET /admin/payments
func (h *Handler) ListAllPayments(c *gin.Context) {
	var payments []billing.Payment
	err := h.db.WithContext(c.Request.Context()).
		Preload("User").Preload("Plan").
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		respond.DB(c, h.logger, "Failed to load payments", err)
		return
	}

	out := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		var planName *string
		if p.Plan != nil {
			planName = &p.Plan.Name
		}
		out = append(out, AdminPayment{
			ID:         p.ID,
			Email:      p.User.Email,
			PlanName:   planName,
			AmountEUR:  p.AmountEUR,
			Status:     p.Status,
			InvoiceID:  p.InvoiceID,
			ReceiptURL: p.ReceiptURL,
			CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	c.JSON(http.StatusOK, out)
}

// GET /admin/stats runs the independent aggregate queries concurrently.
func (h *Handler) GetAdminStats(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	stats := AdminStats{UsersPerPlan: map[string]int{}}

	type planCount struct {
		Name  *string
		Count int
	}
	var counts []planCount

	var g errgroup.Group
	g.Go(func() error { return db.Model(&users.User{}).Count(&stats.TotalUsers).Error })
	g.Go(func() error { return db.Model(&families.Family{}).Count(&stats.TotalFamilies).Error })
	g.Go(func() error { return db.Model(&artworks.Artwork{}).Count(&stats.TotalArtworks).Error })
	g.Go(func() error {
		return db.Model(&billing.Payment{}).
			Where("status = ?", "paid").
			Select("COALESCE(SUM(amount_eur), 0)").
			Scan(&stats.TotalRevenue).Error
	})
	g.Go(func() error {
		return db.Model(&billing.Payment{}).
			Where("status = ? AND created_at >= ?", "paid", time.Now().AddDate(0, 0, -30)).
			Select("COALESCE(SUM(amount_eur), 0)").
			Scan(&stats.RecentRevenue).Error
	})
	g.Go(func() error {
		return db.Table("users").
			Select("plans.name, COUNT(users.id) AS count").
			Joins("LEFT JOIN plans ON users.plan_id = plans.id").
			Group("plans.name").
			Scan(&counts).Error
	})
	if err := g.Wait(); err != nil {
		respond.DB(c, h.logger, "Failed to compute stats", err)
		return
	}

	for _, pc := range counts {
		name := "No Plan"
		if pc.Name != nil {
			name = *pc.Name
		}
		stats.UsersPerPlan[name] = pc.Count
	}

	c.JSON(http.StatusOK, stats)
}

// GET /admin/users/:id
func (h *Handler) GetUserDetails(c *gin.Context) {
	userID := c.Param("id")
	if !artworks.ValidID(userID) {
		respond.Error(c, h.logger, errs.ErrInvalidID)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var user users.User
	err := db.Preload("Plan").Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		respond.DB(c, h.logger, "Failed to load user", err)
		return
	}

	payments := []billing.Payment{}
	if err := db.Preload("Plan").Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		respond.DB(c, h.logger, "Failed to fetch payments", err)
		return
	}

	var memberships []families.FamilyMember
	if err := db.Preload("Family").Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		respond.DB(c, h.logger, "Failed to fetch families", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     toAdminUser(user),
		"payments": payments,
		"families": memberships,
	})
}

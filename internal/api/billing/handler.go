package billing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kidcanvas/internal/infra/stripe"
	"kidcanvas/pkg/logger"
)

type Handler struct {
	db        *gorm.DB
	secretKey string
	appURL    string
	logger    logger.Interface
}

func New(db *gorm.DB, secretKey, appURL string, l logger.Interface) *Handler {
	return &Handler{
		db:        db,
		secretKey: secretKey,
		appURL:    strings.TrimRight(appURL, "/"),
		logger:    l,
	}
}

// configured replies 503 when Stripe is not set up.
func (h *Handler) configured(c *gin.Context) bool {
	if err := stripe.Configure(h.secretKey); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Billing is not configured"})
		return false
	}
	return true
}

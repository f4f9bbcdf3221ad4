package billing_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"kidcanvas/internal/api/billing"
	"kidcanvas/pkg/logger"
)

func TestCheckoutRequiresPriceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := billing.New(nil, "sk_test", "http://app.test", logger.Nop())
	r := gin.New()
	r.POST("/create-checkout-session", h.CreateCheckoutSession)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingUnconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := billing.New(nil, "", "http://app.test", logger.Nop())
	r := gin.New()
	r.POST("/create-checkout-session", h.CreateCheckoutSession)
	r.POST("/billing-portal", h.CreateBillingPortal)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(`{"price_id":"price_1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/billing-portal", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

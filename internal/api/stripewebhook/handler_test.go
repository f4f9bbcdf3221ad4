package stripewebhooks

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75/webhook"

	"kidcanvas/pkg/logger"
)

const (
	whsec  = "whsec_test"
	userID = "11111111-1111-4111-8111-111111111111"
)

func serve(h *Handler, body, signature string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", h.StripeWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookUnconfigured(t *testing.T) {
	w := serve(New(nil, "sk_test", "", logger.Nop()), `{}`, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWebhookBadSignature(t *testing.T) {
	w := serve(New(nil, "sk_test", whsec, logger.Nop()), `{"id":"evt_1"}`, "t=1,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	payload := `{"id":"evt_1","object":"event","type":"invoice.created","data":{"object":{}}}`
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    whsec,
		Timestamp: time.Now(),
	})

	w := serve(New(nil, "sk_test", whsec, logger.Nop()), payload, signed.Header)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}

func TestUserIDFromSubscriptionOrRef(t *testing.T) {
	id, err := userIDFromSubscriptionOrRef(map[string]string{"user_id": userID}, "")
	require.NoError(t, err)
	assert.Equal(t, userID, id)

	id, err = userIDFromSubscriptionOrRef(nil, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, id)

	_, err = userIDFromSubscriptionOrRef(nil, "")
	assert.Error(t, err)

	_, err = userIDFromSubscriptionOrRef(map[string]string{"user_id": "42"}, "42")
	assert.Error(t, err)
}

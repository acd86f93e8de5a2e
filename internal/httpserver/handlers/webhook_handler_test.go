package handlers

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"crmdesk/internal/auth"
	"crmdesk/internal/models"
)

const testWebhookSecret = "whsec_" + "dGVzdC1zZWNyZXQtdGVzdC1zZWNyZXQ="

func deliverWebhook(t *testing.T, conn *gorm.DB, deliveryID string, payload string) *httptest.ResponseRecorder {
	t.Helper()
	h := IdentityWebhook(conn, zap.NewNop().Sugar(), testWebhookSecret)
	ts := fmt.Sprintf("%d", time.Now().Unix())
	sig, err := auth.SignWebhook(testWebhookSecret, deliveryID, ts, []byte(payload))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/identity", bytes.NewReader([]byte(payload)))
	req.Header.Set("webhook-id", deliveryID)
	req.Header.Set("webhook-timestamp", ts)
	req.Header.Set("webhook-signature", sig)
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestWebhookUserSyncIsIdempotent(t *testing.T) {
	conn := setupTestDB(t)

	created := `{"type":"user.created","data":{"id":"ext-1","email":"old@example.com","first_name":"Ada","last_name":"L"}}`
	w := deliverWebhook(t, conn, "msg-1", created)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := `{"type":"user.updated","data":{"id":"ext-1","email":"new@example.com","first_name":"Ada","last_name":"Lovelace"}}`
	w = deliverWebhook(t, conn, "msg-2", updated)
	require.Equal(t, http.StatusOK, w.Code)
	w = deliverWebhook(t, conn, "msg-3", updated)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Where("external_id = ?", "ext-1").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var u models.User
	require.NoError(t, conn.First(&u, "external_id = ?", "ext-1").Error)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "Lovelace", u.LastName)
}

func TestWebhookUserDeletedRemovesOwnedRows(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, testIdentity("ext-2"))
	c := seedContact(t, h, "Ada")
	createInvoice(t, h, c.ID, map[string]any{
		"items": []map[string]any{{"description": "work", "quantity": 1, "unit_price": 5}},
	})

	w := deliverWebhook(t, conn, "msg-1", `{"type":"user.deleted","data":{"id":"ext-2"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, m := range []interface{}{&models.User{}, &models.Contact{}, &models.Invoice{}, &models.InvoiceItem{}} {
		var count int64
		require.NoError(t, conn.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}

	// Redelivery for an already-deleted user stays a success.
	w = deliverWebhook(t, conn, "msg-2", `{"type":"user.deleted","data":{"id":"ext-2"}}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookRejectsMissingHeadersAndBadSignature(t *testing.T) {
	conn := setupTestDB(t)
	h := IdentityWebhook(conn, zap.NewNop().Sugar(), testWebhookSecret)
	payload := `{"type":"user.created","data":{"id":"ext-3"}}`

	// No headers at all.
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/identity", bytes.NewReader([]byte(payload)))
	w := httptest.NewRecorder()
	h(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid headers but a signature minted with another secret.
	otherSecret := "whsec_" + base64.StdEncoding.EncodeToString([]byte("some-other-secret-key"))
	ts := fmt.Sprintf("%d", time.Now().Unix())
	sig, err := auth.SignWebhook(otherSecret, "msg-1", ts, []byte(payload))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/v1/webhooks/identity", bytes.NewReader([]byte(payload)))
	req.Header.Set("webhook-id", "msg-1")
	req.Header.Set("webhook-timestamp", ts)
	req.Header.Set("webhook-signature", sig)
	w = httptest.NewRecorder()
	h(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const webhookTolerance = 5 * time.Minute

var (
	ErrMissingWebhookHeader = errors.New("missing webhook header")
	ErrWebhookSignature     = errors.New("webhook signature mismatch")
	ErrWebhookTimestamp     = errors.New("webhook timestamp out of tolerance")
)

// VerifyWebhook checks the identity provider's delivery signature: HMAC-SHA256
// over "id.timestamp.body" with the base64 secret (whsec_ prefix stripped).
// The signature header may carry several space-separated "v1,<b64>" values;
// any one matching is enough. All three headers must be present.
func VerifyWebhook(secret string, header http.Header, body []byte) error {
	id := header.Get("webhook-id")
	ts := header.Get("webhook-timestamp")
	sig := header.Get("webhook-signature")
	if id == "" || ts == "" || sig == "" {
		return ErrMissingWebhookHeader
	}
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrWebhookTimestamp
	}
	if d := time.Since(time.Unix(sec, 0)); d > webhookTolerance || d < -webhookTolerance {
		return ErrWebhookTimestamp
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return ErrWebhookSignature
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := mac.Sum(nil)
	for _, candidate := range strings.Fields(sig) {
		parts := strings.SplitN(candidate, ",", 2)
		if len(parts) != 2 || parts[0] != "v1" {
			continue
		}
		got, err := base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			continue
		}
		if hmac.Equal(expected, got) {
			return nil
		}
	}
	return ErrWebhookSignature
}

// SignWebhook produces the "v1,<b64>" signature for a delivery; used by tests
// and local replay tooling.
func SignWebhook(secret, id, ts string, body []byte) (string, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

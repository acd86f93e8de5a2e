package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crmdesk/internal/auth"
	"crmdesk/internal/models"
)

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"data"`
}

// IdentityWebhook ingests signed user lifecycle events from the identity
// provider. Deliveries are verified before the body is parsed; re-delivery of
// the same event is idempotent.
func IdentityWebhook(db *gorm.DB, lg *zap.SugaredLogger, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "unreadable body", "")
			return
		}
		if err := auth.VerifyWebhook(secret, r.Header, body); err != nil {
			lg.Warnw("webhook verification failed", "error", err)
			respondError(w, http.StatusUnauthorized, "webhook verification failed", "")
			return
		}
		var ev identityEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if ev.Data.ID == "" {
			validationError(w, "data.id")
			return
		}

		switch ev.Type {
		case "user.created", "user.updated":
			err = upsertUser(db, ev)
		case "user.deleted":
			err = deleteUser(db, ev.Data.ID)
		default:
			respondError(w, http.StatusBadRequest, "unsupported event type", ev.Type)
			return
		}
		if err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"received": ev.Type})
	}
}

func upsertUser(db *gorm.DB, ev identityEvent) error {
	u := models.User{
		ExternalID: ev.Data.ID,
		Email:      ev.Data.Email,
		FirstName:  ev.Data.FirstName,
		LastName:   ev.Data.LastName,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.Where("external_id = ?", ev.Data.ID).FirstOrCreate(&u).Error; err != nil {
		return err
	}
	return db.Model(&u).Updates(map[string]interface{}{
		"email":      ev.Data.Email,
		"first_name": ev.Data.FirstName,
		"last_name":  ev.Data.LastName,
		"updated_at": time.Now(),
	}).Error
}

// deleteUser removes the user and every row they own. A delete for an unknown
// external id is a no-op so repeated deliveries stay idempotent.
func deleteUser(db *gorm.DB, externalID string) error {
	var u models.User
	if err := db.Where("external_id = ?", externalID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&models.Invoice{}).Select("id").Where("user_id = ?", u.ID)
		if err := tx.Where("invoice_id IN (?)", sub).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{&models.Invoice{}, &models.Expense{}, &models.Task{}, &models.Contact{}} {
			if err := tx.Where("user_id = ?", u.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&u).Error
	})
}

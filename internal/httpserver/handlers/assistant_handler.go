package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crmdesk/internal/models"
)

// Assistant is a stub. It answers with a canned reply plus a snapshot of the
// caller's data so the UI has something to render; no model is called.
func Assistant(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			validationError(w, "message")
			return
		}
		var contacts, invoices, tasks int64
		if err := db.Model(&models.Contact{}).Where("user_id = ?", u.ID).Count(&contacts).Error; err != nil {
			upstreamError(w, err)
			return
		}
		if err := db.Model(&models.Invoice{}).Where("user_id = ?", u.ID).Count(&invoices).Error; err != nil {
			upstreamError(w, err)
			return
		}
		if err := db.Model(&models.Task{}).Where("user_id = ?", u.ID).Count(&tasks).Error; err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"reply": "The assistant is not available yet. In the meantime, here is a summary of your workspace.",
			"context": map[string]int64{
				"contacts": contacts,
				"invoices": invoices,
				"tasks":    tasks,
			},
		})
	}
}

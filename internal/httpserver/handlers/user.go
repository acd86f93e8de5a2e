package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"crmdesk/internal/auth"
	"crmdesk/internal/models"
)

// currentUser maps the request identity to the local user row, creating one
// on first sight. Returns false after writing the error response.
func currentUser(db *gorm.DB, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	ident := auth.FromContext(r.Context())
	if ident.ExternalID == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "")
		return models.User{}, false
	}
	u := models.User{
		ExternalID: ident.ExternalID,
		Email:      ident.Email,
		FirstName:  ident.FirstName,
		LastName:   ident.LastName,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.Where("external_id = ?", ident.ExternalID).FirstOrCreate(&u).Error; err != nil {
		upstreamError(w, err)
		return models.User{}, false
	}
	return u, true
}

// validDate accepts the wire date format used across invoices, expenses and
// tasks.
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"crmdesk/internal/models"
)

type contactReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Position  string `json:"position"`
	Notes     string `json:"notes"`
	Status    string `json:"status"`
}

func (req *contactReq) validate() (string, bool) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	if req.FirstName == "" {
		return "first_name", false
	}
	if req.Status == "" {
		req.Status = "active"
	}
	if req.Status != "active" && req.Status != "inactive" {
		return "status", false
	}
	return "", true
}

func CreateContact(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var req contactReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if field, ok := req.validate(); !ok {
			validationError(w, field)
			return
		}
		c := models.Contact{
			UserID:    u.ID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Company:   req.Company,
			Position:  req.Position,
			Notes:     req.Notes,
			Status:    req.Status,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := db.Create(&c).Error; err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, c)
	}
}

func ListContacts(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		q := db.Where("user_id = ?", u.ID)
		if status := r.URL.Query().Get("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			q = q.Where(
				"lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ? OR lower(company) LIKE ?",
				like, like, like, like,
			)
		}
		var cs []models.Contact
		if err := q.Order("created_at desc").Find(&cs).Error; err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, cs)
	}
}

func GetContact(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var c models.Contact
		if err := db.Where("id = ? AND user_id = ?", chi.URLParam(r, "id"), u.ID).First(&c).Error; err != nil {
			notFound(w)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

func UpdateContact(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var c models.Contact
		if err := db.Where("id = ? AND user_id = ?", chi.URLParam(r, "id"), u.ID).First(&c).Error; err != nil {
			notFound(w)
			return
		}
		var req contactReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if field, ok := req.validate(); !ok {
			validationError(w, field)
			return
		}
		// Full replace, not a merge patch.
		c.FirstName = req.FirstName
		c.LastName = req.LastName
		c.Email = req.Email
		c.Phone = req.Phone
		c.Company = req.Company
		c.Position = req.Position
		c.Notes = req.Notes
		c.Status = req.Status
		c.UpdatedAt = time.Now()
		if err := db.Save(&c).Error; err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, c)
	}
}

func DeleteContact(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		var c models.Contact
		if err := db.Where("id = ? AND user_id = ?", id, u.ID).First(&c).Error; err != nil {
			notFound(w)
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			return cascadeDeleteContacts(tx, []string{c.ID})
		})
		if err != nil {
			upstreamError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// cascadeDeleteContacts removes the contacts' invoices (with their items) and
// detaches expenses and tasks before deleting the contacts themselves.
func cascadeDeleteContacts(tx *gorm.DB, ids []string) error {
	sub := tx.Model(&models.Invoice{}).Select("id").Where("contact_id IN ?", ids)
	if err := tx.Where("invoice_id IN (?)", sub).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where("contact_id IN ?", ids).Delete(&models.Invoice{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Expense{}).Where("contact_id IN ?", ids).Update("contact_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Task{}).Where("contact_id IN ?", ids).Update("contact_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Contact{}).Error
}

// BulkContacts applies activate/deactivate/delete to a set of ids,
// all-or-nothing: any id not owned by the caller fails the whole batch.
func BulkContacts(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var req struct {
			Action string   `json:"action"`
			IDs    []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if req.Action != "activate" && req.Action != "deactivate" && req.Action != "delete" {
			validationError(w, "action")
			return
		}
		if len(req.IDs) == 0 {
			validationError(w, "ids")
			return
		}
		var owned []string
		if err := db.Model(&models.Contact{}).Where("user_id = ? AND id IN ?", u.ID, req.IDs).
			Pluck("id", &owned).Error; err != nil {
			upstreamError(w, err)
			return
		}
		ownedSet := make(map[string]bool, len(owned))
		for _, id := range owned {
			ownedSet[id] = true
		}
		var invalid []string
		for _, id := range req.IDs {
			if !ownedSet[id] {
				invalid = append(invalid, id)
			}
		}
		if len(invalid) > 0 {
			respondError(w, http.StatusForbidden, "ids not owned by requester", strings.Join(invalid, ","))
			return
		}

		var err error
		switch req.Action {
		case "activate":
			err = db.Model(&models.Contact{}).Where("id IN ?", req.IDs).
				Updates(map[string]interface{}{"status": "active", "updated_at": time.Now()}).Error
		case "deactivate":
			err = db.Model(&models.Contact{}).Where("id IN ?", req.IDs).
				Updates(map[string]interface{}{"status": "inactive", "updated_at": time.Now()}).Error
		case "delete":
			err = db.Transaction(func(tx *gorm.DB) error {
				return cascadeDeleteContacts(tx, req.IDs)
			})
		}
		if err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"action": req.Action, "count": len(req.IDs)})
	}
}

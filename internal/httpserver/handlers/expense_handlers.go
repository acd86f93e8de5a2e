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

type expenseReq struct {
	Category    string   `json:"category"`
	Amount      *float64 `json:"amount"`
	Name        string   `json:"name"`
	Date        string   `json:"date"`
	ContactID   *string  `json:"contact_id"`
	InvoiceID   *string  `json:"invoice_id"`
	ReceiptURL  string   `json:"receipt_url"`
	Project     string   `json:"project"`
	Reference   string   `json:"reference"`
	PaymentMode string   `json:"payment_mode"`
	Notes       string   `json:"notes"`
}

func (req *expenseReq) validate() (string, bool) {
	req.Category = strings.TrimSpace(req.Category)
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Category == "":
		return "category", false
	case req.Amount == nil:
		return "amount", false
	case req.Name == "":
		return "name", false
	case req.Date == "" || !validDate(req.Date):
		return "date", false
	}
	return "", true
}

func (req *expenseReq) apply(e *models.Expense) {
	e.Category = req.Category
	e.Amount = *req.Amount
	e.Name = req.Name
	e.Date = req.Date
	e.ContactID = req.ContactID
	e.InvoiceID = req.InvoiceID
	e.ReceiptURL = req.ReceiptURL
	e.Project = req.Project
	e.Reference = req.Reference
	e.PaymentMode = req.PaymentMode
	e.Notes = req.Notes
	e.UpdatedAt = time.Now()
}

func CreateExpense(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var req expenseReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if field, ok := req.validate(); !ok {
			validationError(w, field)
			return
		}
		e := models.Expense{UserID: u.ID, CreatedAt: time.Now()}
		req.apply(&e)
		if err := db.Create(&e).Error; err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, e)
	}
}

func ListExpenses(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		q := db.Where("user_id = ?", u.ID)
		if category := r.URL.Query().Get("category"); category != "" {
			q = q.Where("category = ?", category)
		}
		if contactID := r.URL.Query().Get("contact_id"); contactID != "" {
			q = q.Where("contact_id = ?", contactID)
		}
		if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			q = q.Where(
				"lower(name) LIKE ? OR lower(project) LIKE ? OR lower(reference) LIKE ? OR lower(notes) LIKE ?",
				like, like, like, like,
			)
		}
		var es []models.Expense
		if err := q.Order("date desc").Order("created_at desc").Find(&es).Error; err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, es)
	}
}

func GetExpense(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var e models.Expense
		if err := db.Where("id = ? AND user_id = ?", chi.URLParam(r, "id"), u.ID).First(&e).Error; err != nil {
			notFound(w)
			return
		}
		respondJSON(w, http.StatusOK, e)
	}
}

func UpdateExpense(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var e models.Expense
		if err := db.Where("id = ? AND user_id = ?", chi.URLParam(r, "id"), u.ID).First(&e).Error; err != nil {
			notFound(w)
			return
		}
		var req expenseReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if field, ok := req.validate(); !ok {
			validationError(w, field)
			return
		}
		req.apply(&e)
		if err := db.Save(&e).Error; err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, e)
	}
}

func DeleteExpense(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var e models.Expense
		if err := db.Where("id = ? AND user_id = ?", chi.URLParam(r, "id"), u.ID).First(&e).Error; err != nil {
			notFound(w)
			return
		}
		if err := db.Delete(&e).Error; err != nil {
			upstreamError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

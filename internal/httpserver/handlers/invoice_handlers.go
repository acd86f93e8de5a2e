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
	"crmdesk/internal/pdf"
)

type invoiceItemReq struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type invoiceReq struct {
	ContactID     string           `json:"contact_id"`
	InvoiceNumber string           `json:"invoice_number"`
	IssueDate     string           `json:"issue_date"`
	DueDate       string           `json:"due_date"`
	Status        string           `json:"status"`
	TotalAmount   *float64         `json:"total_amount"`
	Notes         string           `json:"notes"`
	Items         []invoiceItemReq `json:"items"`
}

func (req *invoiceReq) validate() (string, bool) {
	req.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	switch {
	case req.ContactID == "":
		return "contact_id", false
	case req.InvoiceNumber == "":
		return "invoice_number", false
	case req.IssueDate == "" || !validDate(req.IssueDate):
		return "issue_date", false
	case req.DueDate == "" || !validDate(req.DueDate):
		return "due_date", false
	}
	if req.Status == "" {
		req.Status = models.InvoiceDraft
	}
	if !models.ValidInvoiceStatus(req.Status) {
		return "status", false
	}
	for _, it := range req.Items {
		if strings.TrimSpace(it.Description) == "" {
			return "items.description", false
		}
		if it.Quantity <= 0 {
			return "items.quantity", false
		}
	}
	return "", true
}

// buildItems recomputes each amount as quantity*unit_price; the client's
// figure is never stored.
func (req *invoiceReq) buildItems(invoiceID string) ([]models.InvoiceItem, float64) {
	items := make([]models.InvoiceItem, 0, len(req.Items))
	var sum float64
	now := time.Now()
	for i, it := range req.Items {
		amount := float64(it.Quantity) * it.UnitPrice
		sum += amount
		items = append(items, models.InvoiceItem{
			InvoiceID:   invoiceID,
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      amount,
			// preserve submission order under the created_at asc read
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}
	return items, sum
}

func CreateInvoice(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var req invoiceReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if field, ok := req.validate(); !ok {
			validationError(w, field)
			return
		}
		var contact models.Contact
		if err := db.Where("id = ? AND user_id = ?", req.ContactID, u.ID).First(&contact).Error; err != nil {
			notFound(w)
			return
		}
		inv := models.Invoice{
			UserID:        u.ID,
			ContactID:     req.ContactID,
			InvoiceNumber: req.InvoiceNumber,
			IssueDate:     req.IssueDate,
			DueDate:       req.DueDate,
			Status:        req.Status,
			Notes:         req.Notes,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit("Items").Create(&inv).Error; err != nil {
				return err
			}
			items, sum := req.buildItems(inv.ID)
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			inv.Items = items
			inv.TotalAmount = sum
			if req.TotalAmount != nil {
				inv.TotalAmount = *req.TotalAmount
			}
			return tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).
				Update("total_amount", inv.TotalAmount).Error
		})
		if err != nil {
			upstreamError(w, err)
			return
		}
		inv.Contact = &contact
		respondJSON(w, http.StatusCreated, inv)
	}
}

func ListInvoices(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		q := db.Where("user_id = ?", u.ID)
		if status := r.URL.Query().Get("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if contactID := r.URL.Query().Get("contact_id"); contactID != "" {
			q = q.Where("contact_id = ?", contactID)
		}
		if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			q = q.Where("lower(invoice_number) LIKE ? OR lower(notes) LIKE ?", like, like)
		}
		var invs []models.Invoice
		if err := q.Preload("Items", itemOrder).Order("created_at desc").Find(&invs).Error; err != nil {
			upstreamError(w, err)
			return
		}
		enrichContacts(db, invs)
		respondJSON(w, http.StatusOK, invs)
	}
}

func itemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc")
}

// enrichContacts attaches contact rows best-effort; a failed lookup leaves
// the field null rather than failing the request.
func enrichContacts(db *gorm.DB, invs []models.Invoice) {
	ids := make([]string, 0, len(invs))
	for _, inv := range invs {
		ids = append(ids, inv.ContactID)
	}
	if len(ids) == 0 {
		return
	}
	var contacts []models.Contact
	if err := db.Where("id IN ?", ids).Find(&contacts).Error; err != nil {
		return
	}
	byID := make(map[string]*models.Contact, len(contacts))
	for i := range contacts {
		byID[contacts[i].ID] = &contacts[i]
	}
	for i := range invs {
		invs[i].Contact = byID[invs[i].ContactID]
	}
}

func loadOwnedInvoice(db *gorm.DB, id, userID string) (models.Invoice, error) {
	var inv models.Invoice
	err := db.Where("id = ? AND user_id = ?", id, userID).Preload("Items", itemOrder).First(&inv).Error
	return inv, err
}

func GetInvoice(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		inv, err := loadOwnedInvoice(db, chi.URLParam(r, "id"), u.ID)
		if err != nil {
			notFound(w)
			return
		}
		var contact models.Contact
		if err := db.Where("id = ?", inv.ContactID).First(&contact).Error; err == nil {
			inv.Contact = &contact
		}
		respondJSON(w, http.StatusOK, inv)
	}
}

func UpdateInvoice(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		inv, err := loadOwnedInvoice(db, chi.URLParam(r, "id"), u.ID)
		if err != nil {
			notFound(w)
			return
		}
		var req invoiceReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if field, ok := req.validate(); !ok {
			validationError(w, field)
			return
		}
		var contact models.Contact
		if err := db.Where("id = ? AND user_id = ?", req.ContactID, u.ID).First(&contact).Error; err != nil {
			notFound(w)
			return
		}
		inv.ContactID = req.ContactID
		inv.InvoiceNumber = req.InvoiceNumber
		inv.IssueDate = req.IssueDate
		inv.DueDate = req.DueDate
		inv.Status = req.Status
		inv.Notes = req.Notes
		inv.UpdatedAt = time.Now()

		// The full item set is replaced in one transaction so a failure can
		// never leave the invoice itemless.
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			items, sum := req.buildItems(inv.ID)
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			inv.Items = items
			inv.TotalAmount = sum
			if req.TotalAmount != nil {
				inv.TotalAmount = *req.TotalAmount
			}
			return tx.Omit("Items").Save(&inv).Error
		})
		if err != nil {
			upstreamError(w, err)
			return
		}
		inv.Contact = &contact
		respondJSON(w, http.StatusOK, inv)
	}
}

func DeleteInvoice(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var inv models.Invoice
		if err := db.Where("id = ? AND user_id = ?", chi.URLParam(r, "id"), u.ID).First(&inv).Error; err != nil {
			notFound(w)
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&inv).Error
		})
		if err != nil {
			upstreamError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// invoiceDocument maps a loaded invoice to the render-ready PDF form. The
// extended flag adds the public address block (phone); contact may be nil.
func invoiceDocument(inv models.Invoice, contact *models.Contact, extended bool) pdf.Document {
	d := pdf.Document{
		Number:    inv.InvoiceNumber,
		IssueDate: inv.IssueDate,
		DueDate:   inv.DueDate,
		Status:    inv.Status,
		Subtotal:  inv.TotalAmount,
		Tax:       0,
		Total:     inv.TotalAmount,
		Notes:     inv.Notes,
	}
	var name, company string
	if contact != nil {
		name = strings.TrimSpace(contact.FirstName + " " + contact.LastName)
		company = contact.Company
		d.BillTo.Email = contact.Email
		if extended {
			d.BillTo.Phone = contact.Phone
		}
	}
	d.BillTo.Name = pdf.BillToName(name, company)
	for _, it := range inv.Items {
		d.Items = append(d.Items, pdf.Line{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		})
	}
	return d
}

func writePDF(w http.ResponseWriter, lg *zap.SugaredLogger, inv models.Invoice, contact *models.Contact, extended bool) {
	data, err := pdf.Render(invoiceDocument(inv, contact, extended))
	if err != nil {
		lg.Errorw("invoice pdf render failed", "invoice_id", inv.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "pdf generation failed", "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-`+inv.InvoiceNumber+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func InvoicePDF(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		inv, err := loadOwnedInvoice(db, chi.URLParam(r, "id"), u.ID)
		if err != nil {
			notFound(w)
			return
		}
		var contact *models.Contact
		var c models.Contact
		if err := db.Where("id = ?", inv.ContactID).First(&c).Error; err == nil {
			contact = &c
		}
		writePDF(w, lg, inv, contact, false)
	}
}

// publicInvoiceView is the complete field set a share-link consumer may see.
// No owner id, no contact id, no contact notes.
type publicInvoiceView struct {
	InvoiceNumber string           `json:"invoice_number"`
	IssueDate     string           `json:"issue_date"`
	DueDate       string           `json:"due_date"`
	Status        string           `json:"status"`
	Items         []publicItemView `json:"items"`
	Subtotal      float64          `json:"subtotal"`
	Tax           float64          `json:"tax"`
	Total         float64          `json:"total"`
	Notes         string           `json:"notes"`
	BillTo        publicBillTo     `json:"bill_to"`
}

type publicItemView struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

type publicBillTo struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func loadPublicInvoice(db *gorm.DB, id string) (models.Invoice, *models.Contact, error) {
	var inv models.Invoice
	if err := db.Where("id = ?", id).Preload("Items", itemOrder).First(&inv).Error; err != nil {
		return inv, nil, err
	}
	var c models.Contact
	if err := db.Where("id = ?", inv.ContactID).First(&c).Error; err != nil {
		return inv, nil, nil
	}
	return inv, &c, nil
}

func PublicInvoice(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, contact, err := loadPublicInvoice(db, chi.URLParam(r, "id"))
		if err != nil {
			notFound(w)
			return
		}
		view := publicInvoiceView{
			InvoiceNumber: inv.InvoiceNumber,
			IssueDate:     inv.IssueDate,
			DueDate:       inv.DueDate,
			Status:        inv.Status,
			Subtotal:      inv.TotalAmount,
			Tax:           0,
			Total:         inv.TotalAmount,
			Notes:         inv.Notes,
		}
		var name, company string
		if contact != nil {
			name = strings.TrimSpace(contact.FirstName + " " + contact.LastName)
			company = contact.Company
			view.BillTo.Company = contact.Company
			view.BillTo.Email = contact.Email
			view.BillTo.Phone = contact.Phone
		}
		view.BillTo.Name = pdf.BillToName(name, company)
		for _, it := range inv.Items {
			view.Items = append(view.Items, publicItemView{
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Amount:      it.Amount,
			})
		}
		respondJSON(w, http.StatusOK, view)
	}
}

func PublicInvoicePDF(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, contact, err := loadPublicInvoice(db, chi.URLParam(r, "id"))
		if err != nil {
			notFound(w)
			return
		}
		writePDF(w, lg, inv, contact, true)
	}
}

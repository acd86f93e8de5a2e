package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice statuses. "unpaid" from legacy clients is not accepted; the
// canonical set is the one the dashboard buckets understand.
const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoicePaid      = "paid"
	InvoiceOverdue   = "overdue"
	InvoiceCancelled = "cancelled"
)

const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

// User is the local shadow of an identity-provider account, created lazily on
// first authenticated request or by the identity webhook.
type User struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;not null" json:"external_id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Contact struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;index;not null" json:"user_id"`
	FirstName string    `gorm:"not null" json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Position  string    `json:"position"`
	Notes     string    `json:"notes"`
	Status    string    `gorm:"not null;default:active;size:16" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Invoice struct {
	ID            string        `gorm:"primaryKey;size:36" json:"id"`
	UserID        string        `gorm:"size:36;index;not null" json:"user_id"`
	ContactID     string        `gorm:"size:36;index;not null" json:"contact_id"`
	InvoiceNumber string        `gorm:"not null" json:"invoice_number"`
	IssueDate     string        `gorm:"size:10;not null" json:"issue_date"`
	DueDate       string        `gorm:"size:10;not null" json:"due_date"`
	Status        string        `gorm:"not null;default:draft;size:16" json:"status"`
	TotalAmount   float64       `json:"total_amount"`
	Notes         string        `json:"notes"`
	Items         []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	Contact       *Contact      `gorm:"-:all" json:"contact,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// InvoiceItem.Amount is always the server-computed Quantity*UnitPrice; clients
// never get to store their own figure.
type InvoiceItem struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	InvoiceID   string    `gorm:"size:36;index;not null" json:"invoice_id"`
	Description string    `gorm:"not null" json:"description"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	Amount      float64   `gorm:"not null" json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return nil
}

type Expense struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;index;not null" json:"user_id"`
	Category    string    `gorm:"not null" json:"category"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Name        string    `gorm:"not null" json:"name"`
	Date        string    `gorm:"size:10;not null" json:"date"`
	ContactID   *string   `gorm:"size:36;index" json:"contact_id,omitempty"`
	InvoiceID   *string   `gorm:"size:36;index" json:"invoice_id,omitempty"`
	ReceiptURL  string    `json:"receipt_url"`
	Project     string    `json:"project"`
	Reference   string    `json:"reference"`
	PaymentMode string    `json:"payment_mode"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

type Task struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;index;not null" json:"user_id"`
	ContactID   *string   `gorm:"size:36;index" json:"contact_id,omitempty"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	DueDate     string    `gorm:"size:10" json:"due_date"`
	Status      string    `gorm:"not null;default:pending;size:16" json:"status"`
	Priority    string    `gorm:"not null;default:medium;size:8" json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

func ValidPriority(s string) bool {
	return s == "low" || s == "medium" || s == "high"
}

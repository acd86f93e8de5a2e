package handlers

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crmdesk/internal/models"
	"crmdesk/internal/services"
)

type dashboardStats struct {
	TotalContacts  int64                   `json:"total_contacts"`
	ActiveInvoices int64                   `json:"active_invoices"`
	PendingTasks   int64                   `json:"pending_tasks"`
	TotalRevenue   float64                 `json:"total_revenue"`
	RecentActivity []services.ActivityItem `json:"recent_activity"`
}

func DashboardStats(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var stats dashboardStats
		if err := db.Model(&models.Contact{}).Where("user_id = ?", u.ID).Count(&stats.TotalContacts).Error; err != nil {
			upstreamError(w, err)
			return
		}
		if err := db.Model(&models.Invoice{}).
			Where("user_id = ? AND status IN ?", u.ID, []string{models.InvoiceDraft, models.InvoiceSent, models.InvoiceOverdue}).
			Count(&stats.ActiveInvoices).Error; err != nil {
			upstreamError(w, err)
			return
		}
		if err := db.Model(&models.Task{}).
			Where("user_id = ? AND status IN ?", u.ID, []string{models.TaskPending, models.TaskInProgress}).
			Count(&stats.PendingTasks).Error; err != nil {
			upstreamError(w, err)
			return
		}
		if err := db.Model(&models.Invoice{}).
			Where("user_id = ? AND status = ?", u.ID, models.InvoicePaid).
			Select("COALESCE(SUM(total_amount), 0)").Scan(&stats.TotalRevenue).Error; err != nil {
			upstreamError(w, err)
			return
		}

		var contacts []models.Contact
		var invoices []models.Invoice
		var tasks []models.Task
		if err := db.Where("user_id = ?", u.ID).Order("created_at desc").Limit(5).Find(&contacts).Error; err != nil {
			upstreamError(w, err)
			return
		}
		if err := db.Where("user_id = ?", u.ID).Order("created_at desc").Limit(5).Find(&invoices).Error; err != nil {
			upstreamError(w, err)
			return
		}
		if err := db.Where("user_id = ?", u.ID).Order("created_at desc").Limit(5).Find(&tasks).Error; err != nil {
			upstreamError(w, err)
			return
		}
		stats.RecentActivity = services.BuildActivityFeed(contacts, invoices, tasks)

		respondJSON(w, http.StatusOK, stats)
	}
}

type financialReport struct {
	services.FinancialSummary
	Monthly []services.MonthlyPoint `json:"monthly_revenue"`
}

// DashboardFinancial reports revenue/pending/overdue over a trailing window
// (?days=N, default 30) plus the trailing-12-month paid revenue series.
func DashboardFinancial(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		days := 30
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 365 {
				validationError(w, "days")
				return
			}
			days = n
		}
		now := time.Now()
		from := now.AddDate(0, 0, -(days - 1))
		// Local midnight, matching the day bounds the summary buckets use.
		windowStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

		var windowed []models.Invoice
		if err := db.Where("user_id = ? AND created_at >= ?", u.ID, windowStart).
			Find(&windowed).Error; err != nil {
			upstreamError(w, err)
			return
		}
		var paid []models.Invoice
		if err := db.Where("user_id = ? AND status = ?", u.ID, models.InvoicePaid).
			Find(&paid).Error; err != nil {
			upstreamError(w, err)
			return
		}

		report := financialReport{
			FinancialSummary: services.Summarize(windowed, from, now),
			Monthly:          services.MonthlyRevenue(paid, now),
		}
		respondJSON(w, http.StatusOK, report)
	}
}

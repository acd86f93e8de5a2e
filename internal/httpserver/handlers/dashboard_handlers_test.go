package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmdesk/internal/models"
)

func TestDashboardStats(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, testIdentity("user-a"))
	c := seedContact(t, h, "Ada")
	seedContact(t, h, "Grace")

	createInvoice(t, h, c.ID, map[string]any{
		"invoice_number": "INV-PAID", "status": "paid",
		"items": []map[string]any{{"description": "work", "quantity": 1, "unit_price": 100}},
	})
	createInvoice(t, h, c.ID, map[string]any{
		"invoice_number": "INV-SENT", "status": "sent",
		"items": []map[string]any{{"description": "work", "quantity": 1, "unit_price": 50}},
	})
	createInvoice(t, h, c.ID, map[string]any{
		"invoice_number": "INV-CANCELLED", "status": "cancelled",
		"items": []map[string]any{{"description": "work", "quantity": 1, "unit_price": 10}},
	})

	w := doJSON(t, h, http.MethodPost, "/v1/tasks", map[string]any{"title": "call Ada"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, h, http.MethodPost, "/v1/tasks", map[string]any{"title": "done thing", "status": "completed"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodGet, "/v1/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats struct {
		TotalContacts  int64   `json:"total_contacts"`
		ActiveInvoices int64   `json:"active_invoices"`
		PendingTasks   int64   `json:"pending_tasks"`
		TotalRevenue   float64 `json:"total_revenue"`
		RecentActivity []struct {
			Type  string `json:"type"`
			Title string `json:"title"`
		} `json:"recent_activity"`
	}
	decode(t, w, &stats)
	assert.EqualValues(t, 2, stats.TotalContacts)
	assert.EqualValues(t, 1, stats.ActiveInvoices) // sent only; paid and cancelled excluded
	assert.EqualValues(t, 1, stats.PendingTasks)
	assert.InDelta(t, 100, stats.TotalRevenue, 1e-9)

	require.NotEmpty(t, stats.RecentActivity)
	assert.LessOrEqual(t, len(stats.RecentActivity), 10)
	types := map[string]bool{}
	for _, item := range stats.RecentActivity {
		types[item.Type] = true
	}
	assert.True(t, types["contact"])
	assert.True(t, types["invoice"])
	assert.True(t, types["task"])
}

func TestDashboardFinancial(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, testIdentity("user-a"))
	c := seedContact(t, h, "Ada")

	for _, fix := range []struct {
		status string
		amount float64
	}{
		{"paid", 100},
		{"sent", 50},
		{"overdue", 25},
	} {
		createInvoice(t, h, c.ID, map[string]any{
			"invoice_number": "INV-" + fix.status,
			"status":         fix.status,
			"total_amount":   fix.amount,
		})
	}

	w := doJSON(t, h, http.MethodGet, "/v1/dashboard/financial", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report struct {
		TotalRevenue   float64 `json:"total_revenue"`
		PendingRevenue float64 `json:"pending_revenue"`
		OverdueRevenue float64 `json:"overdue_revenue"`
		Daily          []struct {
			Date    string  `json:"date"`
			Revenue float64 `json:"revenue"`
			Pending float64 `json:"pending"`
			Overdue float64 `json:"overdue"`
		} `json:"daily"`
		Monthly []struct {
			Month   string  `json:"month"`
			Revenue float64 `json:"revenue"`
		} `json:"monthly_revenue"`
	}
	decode(t, w, &report)
	assert.InDelta(t, 100, report.TotalRevenue, 1e-9)
	assert.InDelta(t, 50, report.PendingRevenue, 1e-9)
	assert.InDelta(t, 25, report.OverdueRevenue, 1e-9)

	// 30-day window enumerated inclusively; activity only on the last day.
	require.Len(t, report.Daily, 30)
	for i, day := range report.Daily {
		if i == len(report.Daily)-1 {
			assert.InDelta(t, 100, day.Revenue, 1e-9)
			assert.InDelta(t, 50, day.Pending, 1e-9)
			assert.InDelta(t, 25, day.Overdue, 1e-9)
		} else {
			assert.Zero(t, day.Revenue)
			assert.Zero(t, day.Pending)
			assert.Zero(t, day.Overdue)
		}
	}

	require.Len(t, report.Monthly, 12)
	assert.InDelta(t, 100, report.Monthly[len(report.Monthly)-1].Revenue, 1e-9)
	for _, m := range report.Monthly[:len(report.Monthly)-1] {
		assert.Zero(t, m.Revenue)
	}
}

func TestDashboardStatsSurfacesStoreErrors(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, testIdentity("user-a"))
	seedContact(t, h, "Ada")

	require.NoError(t, conn.Migrator().DropTable(&models.Task{}))

	w := doJSON(t, h, http.MethodGet, "/v1/dashboard/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "database error", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestDashboardFinancialIncludesFirstWindowDay(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, testIdentity("user-a"))
	c := seedContact(t, h, "Ada")

	var u models.User
	require.NoError(t, conn.First(&u, "external_id = ?", "user-a").Error)

	// Local midnight of the oldest day in the default 30-day window.
	first := time.Now().AddDate(0, 0, -29)
	inv := models.Invoice{
		UserID:        u.ID,
		ContactID:     c.ID,
		InvoiceNumber: "INV-OLD",
		IssueDate:     "2026-08-01",
		DueDate:       "2026-09-01",
		Status:        models.InvoicePaid,
		TotalAmount:   75,
		CreatedAt:     time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location()),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, conn.Create(&inv).Error)

	w := doJSON(t, h, http.MethodGet, "/v1/dashboard/financial", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report struct {
		TotalRevenue float64 `json:"total_revenue"`
		Daily        []struct {
			Date    string  `json:"date"`
			Revenue float64 `json:"revenue"`
		} `json:"daily"`
	}
	decode(t, w, &report)
	assert.InDelta(t, 75, report.TotalRevenue, 1e-9)
	require.Len(t, report.Daily, 30)
	assert.Equal(t, inv.CreatedAt.Format("2006-01-02"), report.Daily[0].Date)
	assert.InDelta(t, 75, report.Daily[0].Revenue, 1e-9)
}

func TestDashboardFinancialRejectsBadWindow(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, testIdentity("user-a"))
	w := doJSON(t, h, http.MethodGet, "/v1/dashboard/financial?days=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantStub(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, testIdentity("user-a"))
	seedContact(t, h, "Ada")

	w := doJSON(t, h, http.MethodPost, "/v1/assistant", map[string]any{"message": "how are sales?"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Reply   string           `json:"reply"`
		Context map[string]int64 `json:"context"`
	}
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.Reply)
	assert.EqualValues(t, 1, resp.Context["contacts"])

	w = doJSON(t, h, http.MethodPost, "/v1/assistant", map[string]any{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantSurfacesStoreErrors(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, testIdentity("user-a"))
	seedContact(t, h, "Ada")

	require.NoError(t, conn.Migrator().DropTable(&models.Task{}))

	w := doJSON(t, h, http.MethodPost, "/v1/assistant", map[string]any{"message": "how are sales?"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "database error", body["error"])
}

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"crmdesk/internal/auth"
	"crmdesk/internal/db"
	"crmdesk/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))
	return conn
}

// newTestRouter mounts the full authenticated surface with a fixed identity
// injected, standing in for the provider-token middleware.
func newTestRouter(conn *gorm.DB, ident auth.Identity) http.Handler {
	lg := zap.NewNop().Sugar()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithIdentity(req.Context(), ident)))
		})
	})
	r.Get("/v1/contacts", ListContacts(conn, lg))
	r.Post("/v1/contacts", CreateContact(conn, lg))
	r.Post("/v1/contacts/bulk", BulkContacts(conn, lg))
	r.Get("/v1/contacts/{id}", GetContact(conn, lg))
	r.Put("/v1/contacts/{id}", UpdateContact(conn, lg))
	r.Delete("/v1/contacts/{id}", DeleteContact(conn, lg))
	r.Get("/v1/invoices", ListInvoices(conn, lg))
	r.Post("/v1/invoices", CreateInvoice(conn, lg))
	r.Get("/v1/invoices/{id}", GetInvoice(conn, lg))
	r.Put("/v1/invoices/{id}", UpdateInvoice(conn, lg))
	r.Delete("/v1/invoices/{id}", DeleteInvoice(conn, lg))
	r.Get("/v1/invoices/{id}/pdf", InvoicePDF(conn, lg))
	r.Get("/v1/expenses", ListExpenses(conn, lg))
	r.Post("/v1/expenses", CreateExpense(conn, lg))
	r.Get("/v1/expenses/{id}", GetExpense(conn, lg))
	r.Put("/v1/expenses/{id}", UpdateExpense(conn, lg))
	r.Delete("/v1/expenses/{id}", DeleteExpense(conn, lg))
	r.Get("/v1/tasks", ListTasks(conn, lg))
	r.Post("/v1/tasks", CreateTask(conn, lg))
	r.Get("/v1/tasks/{id}", GetTask(conn, lg))
	r.Put("/v1/tasks/{id}", UpdateTask(conn, lg))
	r.Delete("/v1/tasks/{id}", DeleteTask(conn, lg))
	r.Get("/v1/dashboard/stats", DashboardStats(conn, lg))
	r.Get("/v1/dashboard/financial", DashboardFinancial(conn, lg))
	r.Post("/v1/assistant", Assistant(conn, lg))
	return r
}

// newPublicRouter mounts the unauthenticated share-link surface.
func newPublicRouter(conn *gorm.DB) http.Handler {
	lg := zap.NewNop().Sugar()
	r := chi.NewRouter()
	r.Get("/v1/invoices/public/{id}", PublicInvoice(conn, lg))
	r.Get("/v1/invoices/public/{id}/pdf", PublicInvoicePDF(conn, lg))
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func testIdentity(ext string) auth.Identity {
	return auth.Identity{ExternalID: ext, Email: ext + "@example.com", FirstName: "Test", LastName: "User"}
}

func seedContact(t *testing.T, h http.Handler, firstName string) models.Contact {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/v1/contacts", map[string]any{"first_name": firstName})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c models.Contact
	decode(t, w, &c)
	return c
}

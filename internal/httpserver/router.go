package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"crmdesk/internal/auth"
	"crmdesk/internal/config"
	"crmdesk/internal/httpserver/handlers"
)

func NewRouter(db *gorm.DB, lg *zap.SugaredLogger, cfg config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	// Unauthenticated surface: identity webhook and public invoice share links.
	r.Post("/v1/webhooks/identity", handlers.IdentityWebhook(db, lg, cfg.WebhookSecret))
	r.Get("/v1/invoices/public/{id}", handlers.PublicInvoice(db, lg))
	r.Get("/v1/invoices/public/{id}/pdf", handlers.PublicInvoicePDF(db, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.Bearer())

		protected.Get("/v1/contacts", handlers.ListContacts(db, lg))
		protected.Post("/v1/contacts", handlers.CreateContact(db, lg))
		protected.Post("/v1/contacts/bulk", handlers.BulkContacts(db, lg))
		protected.Get("/v1/contacts/{id}", handlers.GetContact(db, lg))
		protected.Put("/v1/contacts/{id}", handlers.UpdateContact(db, lg))
		protected.Delete("/v1/contacts/{id}", handlers.DeleteContact(db, lg))

		protected.Get("/v1/invoices", handlers.ListInvoices(db, lg))
		protected.Post("/v1/invoices", handlers.CreateInvoice(db, lg))
		protected.Get("/v1/invoices/{id}", handlers.GetInvoice(db, lg))
		protected.Put("/v1/invoices/{id}", handlers.UpdateInvoice(db, lg))
		protected.Delete("/v1/invoices/{id}", handlers.DeleteInvoice(db, lg))
		protected.Get("/v1/invoices/{id}/pdf", handlers.InvoicePDF(db, lg))

		protected.Get("/v1/expenses", handlers.ListExpenses(db, lg))
		protected.Post("/v1/expenses", handlers.CreateExpense(db, lg))
		protected.Get("/v1/expenses/{id}", handlers.GetExpense(db, lg))
		protected.Put("/v1/expenses/{id}", handlers.UpdateExpense(db, lg))
		protected.Delete("/v1/expenses/{id}", handlers.DeleteExpense(db, lg))

		protected.Get("/v1/tasks", handlers.ListTasks(db, lg))
		protected.Post("/v1/tasks", handlers.CreateTask(db, lg))
		protected.Get("/v1/tasks/{id}", handlers.GetTask(db, lg))
		protected.Put("/v1/tasks/{id}", handlers.UpdateTask(db, lg))
		protected.Delete("/v1/tasks/{id}", handlers.DeleteTask(db, lg))

		protected.Get("/v1/dashboard/stats", handlers.DashboardStats(db, lg))
		protected.Get("/v1/dashboard/financial", handlers.DashboardFinancial(db, lg))

		protected.Post("/v1/assistant", handlers.Assistant(db, lg))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

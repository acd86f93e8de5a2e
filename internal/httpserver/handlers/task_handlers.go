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

type taskReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	ContactID   *string `json:"contact_id"`
}

func (req *taskReq) validate() (string, bool) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title", false
	}
	if req.DueDate != "" && !validDate(req.DueDate) {
		return "due_date", false
	}
	if req.Status == "" {
		req.Status = models.TaskPending
	}
	if !models.ValidTaskStatus(req.Status) {
		return "status", false
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	if !models.ValidPriority(req.Priority) {
		return "priority", false
	}
	return "", true
}

func (req *taskReq) apply(t *models.Task) {
	t.Title = req.Title
	t.Description = req.Description
	t.DueDate = req.DueDate
	t.Status = req.Status
	t.Priority = req.Priority
	t.ContactID = req.ContactID
	t.UpdatedAt = time.Now()
}

func CreateTask(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var req taskReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if field, ok := req.validate(); !ok {
			validationError(w, field)
			return
		}
		t := models.Task{UserID: u.ID, CreatedAt: time.Now()}
		req.apply(&t)
		if err := db.Create(&t).Error; err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, t)
	}
}

func ListTasks(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		q := db.Where("user_id = ?", u.ID)
		if status := r.URL.Query().Get("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if priority := r.URL.Query().Get("priority"); priority != "" {
			q = q.Where("priority = ?", priority)
		}
		if contactID := r.URL.Query().Get("contact_id"); contactID != "" {
			q = q.Where("contact_id = ?", contactID)
		}
		if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			q = q.Where("lower(title) LIKE ? OR lower(description) LIKE ?", like, like)
		}
		var ts []models.Task
		if err := q.Order("due_date desc").Order("created_at desc").Find(&ts).Error; err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, ts)
	}
}

func GetTask(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var t models.Task
		if err := db.Where("id = ? AND user_id = ?", chi.URLParam(r, "id"), u.ID).First(&t).Error; err != nil {
			notFound(w)
			return
		}
		respondJSON(w, http.StatusOK, t)
	}
}

func UpdateTask(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var t models.Task
		if err := db.Where("id = ? AND user_id = ?", chi.URLParam(r, "id"), u.ID).First(&t).Error; err != nil {
			notFound(w)
			return
		}
		var req taskReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid json", err.Error())
			return
		}
		if field, ok := req.validate(); !ok {
			validationError(w, field)
			return
		}
		req.apply(&t)
		if err := db.Save(&t).Error; err != nil {
			upstreamError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, t)
	}
}

func DeleteTask(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := currentUser(db, w, r)
		if !ok {
			return
		}
		var t models.Task
		if err := db.Where("id = ? AND user_id = ?", chi.URLParam(r, "id"), u.ID).First(&t).Error; err != nil {
			notFound(w)
			return
		}
		if err := db.Delete(&t).Error; err != nil {
			upstreamError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

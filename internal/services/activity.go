package services

import (
	"sort"
	"strings"
	"time"

	"crmdesk/internal/models"
)

type ActivityItem struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// BuildActivityFeed merges the three recent-item lists into a single feed
// sorted by timestamp descending and truncated to 10. Ties keep concatenation
// order (contacts, then invoices, then tasks) via the stable sort.
func BuildActivityFeed(contacts []models.Contact, invoices []models.Invoice, tasks []models.Task) []ActivityItem {
	feed := make([]ActivityItem, 0, len(contacts)+len(invoices)+len(tasks))
	for _, c := range contacts {
		feed = append(feed, ActivityItem{
			Type:      "contact",
			ID:        c.ID,
			Title:     strings.TrimSpace(c.FirstName + " " + c.LastName),
			Timestamp: c.CreatedAt,
		})
	}
	for _, inv := range invoices {
		feed = append(feed, ActivityItem{
			Type:      "invoice",
			ID:        inv.ID,
			Title:     "Invoice " + inv.InvoiceNumber,
			Timestamp: inv.CreatedAt,
		})
	}
	for _, t := range tasks {
		feed = append(feed, ActivityItem{
			Type:      "task",
			ID:        t.ID,
			Title:     t.Title,
			Timestamp: t.CreatedAt,
		})
	}
	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Timestamp.After(feed[j].Timestamp) })
	if len(feed) > 10 {
		feed = feed[:10]
	}
	return feed
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmdesk/internal/models"
)

func TestBuildActivityFeedMergesAndTruncates(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var contacts []models.Contact
	var invoices []models.Invoice
	var tasks []models.Task
	for i := 0; i < 5; i++ {
		contacts = append(contacts, models.Contact{ID: "c", FirstName: "C", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		invoices = append(invoices, models.Invoice{ID: "i", InvoiceNumber: "N", CreatedAt: base.Add(time.Duration(i)*time.Hour + 30*time.Minute)})
		tasks = append(tasks, models.Task{ID: "t", Title: "T", CreatedAt: base.Add(time.Duration(i)*time.Hour + 45*time.Minute)})
	}

	feed := BuildActivityFeed(contacts, invoices, tasks)
	require.Len(t, feed, 10)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Timestamp.After(feed[i-1].Timestamp), "feed must be sorted descending")
	}
}

func TestBuildActivityFeedTieKeepsConcatenationOrder(t *testing.T) {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	feed := BuildActivityFeed(
		[]models.Contact{{ID: "c1", FirstName: "Ada", LastName: "Lovelace", CreatedAt: ts}},
		[]models.Invoice{{ID: "i1", InvoiceNumber: "INV-1", CreatedAt: ts}},
		[]models.Task{{ID: "t1", Title: "call", CreatedAt: ts}},
	)
	require.Len(t, feed, 3)
	assert.Equal(t, []string{"contact", "invoice", "task"}, []string{feed[0].Type, feed[1].Type, feed[2].Type})
	assert.Equal(t, "Ada Lovelace", feed[0].Title)
	assert.Equal(t, "Invoice INV-1", feed[1].Title)
}

func TestBuildActivityFeedEmptyInputs(t *testing.T) {
	feed := BuildActivityFeed(nil, nil, nil)
	assert.Empty(t, feed)
}

package services

import (
	"sort"
	"time"

	"crmdesk/internal/models"
)

type DailyPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Pending float64 `json:"pending"`
	Overdue float64 `json:"overdue"`
}

type MonthlyPoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type FinancialSummary struct {
	TotalRevenue   float64      `json:"total_revenue"`
	PendingRevenue float64      `json:"pending_revenue"`
	OverdueRevenue float64      `json:"overdue_revenue"`
	Daily          []DailyPoint `json:"daily"`
}

// Summarize buckets the given invoices by status (paid -> revenue, draft/sent
// -> pending, overdue -> overdue) and builds a per-day series covering every
// day from `from` to `to` inclusive. Days without invoices show explicit
// zeros; the day enumeration drives the series, not the data. Cancelled
// invoices count toward nothing.
func Summarize(invoices []models.Invoice, from, to time.Time) FinancialSummary {
	from = truncateDay(from)
	to = truncateDay(to)

	byDay := make(map[string]*DailyPoint)
	var s FinancialSummary
	for _, inv := range invoices {
		day := truncateDay(inv.CreatedAt)
		if day.Before(from) || day.After(to) {
			continue
		}
		key := day.Format("2006-01-02")
		p := byDay[key]
		if p == nil {
			p = &DailyPoint{Date: key}
			byDay[key] = p
		}
		switch inv.Status {
		case models.InvoicePaid:
			s.TotalRevenue += inv.TotalAmount
			p.Revenue += inv.TotalAmount
		case models.InvoiceDraft, models.InvoiceSent:
			s.PendingRevenue += inv.TotalAmount
			p.Pending += inv.TotalAmount
		case models.InvoiceOverdue:
			s.OverdueRevenue += inv.TotalAmount
			p.Overdue += inv.TotalAmount
		}
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		if p, ok := byDay[key]; ok {
			s.Daily = append(s.Daily, *p)
		} else {
			s.Daily = append(s.Daily, DailyPoint{Date: key})
		}
	}
	return s
}

// MonthlyRevenue groups paid invoices by calendar month over the trailing 12
// months ending at `now`, sorted ascending by YYYY-MM key. Months with no
// paid invoices are present with zero revenue.
func MonthlyRevenue(invoices []models.Invoice, now time.Time) []MonthlyPoint {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)
	byMonth := make(map[string]float64)
	for _, inv := range invoices {
		if inv.Status != models.InvoicePaid {
			continue
		}
		if inv.CreatedAt.Before(start) {
			continue
		}
		byMonth[inv.CreatedAt.Format("2006-01")] += inv.TotalAmount
	}
	points := make([]MonthlyPoint, 0, 12)
	for i := 0; i < 12; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		points = append(points, MonthlyPoint{Month: key, Revenue: byMonth[key]})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
	return points
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

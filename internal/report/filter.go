// Package report filters, orders, pages and aggregates resolved payments.
package report

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/text/cases"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// Filter selects payments. Every set field must match; zero fields match all.
type Filter struct {
	// StartDate is an inclusive lower bound at the start of the day.
	StartDate *civil.Date
	// EndDate is an inclusive upper bound at 23:59:59.999 of the day.
	EndDate      *civil.Date
	CostCenterID *int64
	AccountID    *int64
	Category     string
	// Search is a free-text term, see Search.
	Search string
}

// bounds converts the calendar-day bounds into instants in loc.
func (f Filter) bounds(loc *time.Location) (start, end time.Time) {
	if f.StartDate != nil {
		start = f.StartDate.In(loc)
	}
	if f.EndDate != nil {
		d := *f.EndDate
		end = time.Date(d.Year, d.Month, d.Day, 23, 59, 59, int(999*time.Millisecond), loc)
	}
	return start, end
}

// Apply returns the payments matching f, keeping their order. Day bounds are
// evaluated in loc.
func Apply(items []domain.PaymentWithRelations, f Filter, loc *time.Location) []domain.PaymentWithRelations {
	if loc == nil {
		loc = time.UTC
	}
	start, end := f.bounds(loc)
	term := foldTerm(f.Search)

	out := make([]domain.PaymentWithRelations, 0, len(items))
	for _, p := range items {
		if f.StartDate != nil && p.Date.Before(start) {
			continue
		}
		if f.EndDate != nil && p.Date.After(end) {
			continue
		}
		if f.CostCenterID != nil && p.CostCenterID != *f.CostCenterID {
			continue
		}
		if f.AccountID != nil && p.AccountID != *f.AccountID {
			continue
		}
		if f.Category != "" && p.CostCenter.Category != f.Category {
			continue
		}
		if term != "" && !matches(p, term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Search keeps payments whose description, account name or
// "{category} - {subcategory}" contains term, ignoring case.
// An empty term keeps everything.
func Search(items []domain.PaymentWithRelations, term string) []domain.PaymentWithRelations {
	folded := foldTerm(term)
	if folded == "" {
		return items
	}

	out := make([]domain.PaymentWithRelations, 0, len(items))
	for _, p := range items {
		if matches(p, folded) {
			out = append(out, p)
		}
	}
	return out
}

func foldTerm(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	return cases.Fold().String(term)
}

func matches(p domain.PaymentWithRelations, folded string) bool {
	fold := cases.Fold()
	for _, field := range []string{p.Description, p.Account.Name, p.CostCenter.Label()} {
		if strings.Contains(fold.String(field), folded) {
			return true
		}
	}
	return false
}

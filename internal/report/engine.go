package report

import (
	"time"

	"golang.org/x/text/language"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// Engine bundles the display settings shared by list and report queries.
type Engine struct {
	loc         *time.Location
	tag         language.Tag
	pageSize    int
	topExpenses int
}

// NewEngine creates an Engine. locale is a BCP 47 tag such as "it" or "en-GB";
// an unparsable tag falls back to language.Und.
func NewEngine(loc *time.Location, locale string, pageSize, topExpenses int) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Engine{loc: loc, tag: tag, pageSize: pageSize, topExpenses: topExpenses}
}

// Location is the zone calendar-day filters are evaluated in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// List filters and sorts items for display.
func (e *Engine) List(items []domain.PaymentWithRelations, f Filter) []domain.PaymentWithRelations {
	return SortForDisplay(Apply(items, f, e.loc), e.tag)
}

// ListPage is List followed by Paginate with the configured page size.
func (e *Engine) ListPage(items []domain.PaymentWithRelations, f Filter, page int) Page[domain.PaymentWithRelations] {
	return Paginate(e.List(items, f), page, e.pageSize)
}

// Summarize filters items and aggregates the result.
func (e *Engine) Summarize(items []domain.PaymentWithRelations, f Filter) Summary {
	return Summarize(Apply(items, f, e.loc), e.topExpenses)
}

// Categories lists distinct categories in display order.
func (e *Engine) Categories(costCenters []domain.CostCenter) []string {
	return Categories(costCenters, e.tag)
}

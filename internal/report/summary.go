package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// CategoryTotal is the spend booked to one cost center category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	// Percentage of the overall total, rounded to two places.
	Percentage decimal.Decimal `json:"percentage"`
}

// Summary aggregates a filtered set of payments.
type Summary struct {
	TotalExpenses decimal.Decimal               `json:"totalExpenses"`
	Count         int                           `json:"count"`
	Categories    []CategoryTotal               `json:"categories"`
	TopExpenses   []domain.PaymentWithRelations `json:"topExpenses"`
}

// Summarize totals items overall and per category and picks the topN
// largest payments. Percentages are all zero when the total is zero.
func Summarize(items []domain.PaymentWithRelations, topN int) Summary {
	total := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	var order []string

	for _, p := range items {
		total = total.Add(p.Amount)
		cat := p.CostCenter.Category
		if _, ok := byCategory[cat]; !ok {
			order = append(order, cat)
		}
		byCategory[cat] = byCategory[cat].Add(p.Amount)
	}

	categories := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		amount := byCategory[cat]
		pct := decimal.Zero
		if !total.IsZero() {
			pct = amount.Div(total).Mul(hundred).Round(2)
		}
		categories = append(categories, CategoryTotal{Category: cat, Amount: amount, Percentage: pct})
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Amount.GreaterThan(categories[j].Amount)
	})

	return Summary{
		TotalExpenses: total,
		Count:         len(items),
		Categories:    categories,
		TopExpenses:   TopExpenses(items, topN),
	}
}

// TopExpenses returns the n largest payments by amount, largest first.
// Ties keep their input order.
func TopExpenses(items []domain.PaymentWithRelations, n int) []domain.PaymentWithRelations {
	sorted := make([]domain.PaymentWithRelations, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})

	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

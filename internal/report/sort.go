package report

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// SortForDisplay orders payments by category then subcategory, both ascending
// under the collation rules of tag, then by date with the most recent first.
// The input slice is sorted in place and returned.
func SortForDisplay(items []domain.PaymentWithRelations, tag language.Tag) []domain.PaymentWithRelations {
	col := collate.New(tag)

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if c := col.CompareString(a.CostCenter.Category, b.CostCenter.Category); c != 0 {
			return c < 0
		}
		if c := col.CompareString(a.CostCenter.Subcategory, b.CostCenter.Subcategory); c != 0 {
			return c < 0
		}
		return a.Date.After(b.Date)
	})
	return items
}

// Categories returns the distinct cost center categories in collation order.
func Categories(costCenters []domain.CostCenter, tag language.Tag) []string {
	seen := make(map[string]bool, len(costCenters))
	out := []string{}
	for _, c := range costCenters {
		if seen[c.Category] {
			continue
		}
		seen[c.Category] = true
		out = append(out, c.Category)
	}

	collate.New(tag).SortStrings(out)
	return out
}

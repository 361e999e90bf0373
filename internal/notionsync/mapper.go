package notionsync

import (
	"strconv"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/payment-tracker/internal/domain"
)

// Property names shared by the three databases.
const (
	PropID = "ID"

	PropName        = "Name"
	PropType        = "Type"
	PropCategory    = "Category"
	PropSubcategory = "Subcategory"
	PropDate        = "Date"
	PropAmount      = "Amount"
	PropDescription = "Description"
	PropAccount     = "Account"
	PropCostCenter  = "Cost Center"
	PropReceipt     = "Receipt"
	PropRequest     = "Request"
)

func title(s string) notionapi.TitleProperty {
	return notionapi.TitleProperty{
		Title: []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}},
	}
}

func richText(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		RichText: []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}},
	}
}

func relation(pageID string) notionapi.RelationProperty {
	return notionapi.RelationProperty{
		Relation: []notionapi.Relation{{ID: notionapi.PageID(pageID)}},
	}
}

func pageKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// AccountToNotionProperties maps an account to a row of the accounts database.
func AccountToNotionProperties(a domain.Account) notionapi.Properties {
	return notionapi.Properties{
		PropID:   title(pageKey(a.ID)),
		PropName: richText(a.Name),
		PropType: notionapi.SelectProperty{Select: notionapi.Option{Name: string(a.Type)}},
	}
}

// CostCenterToNotionProperties maps a cost center to a row of the cost centers database.
func CostCenterToNotionProperties(c domain.CostCenter) notionapi.Properties {
	return notionapi.Properties{
		PropID:          title(pageKey(c.ID)),
		PropCategory:    notionapi.SelectProperty{Select: notionapi.Option{Name: c.Category}},
		PropSubcategory: richText(c.Subcategory),
		PropName:        richText(c.Label()),
	}
}

// PaymentToNotionProperties maps a payment to a row of the payments database.
// Account and cost center become relations when their pages are known.
// Notion numbers are floats, so the amount loses exactness on export.
func PaymentToNotionProperties(p domain.Payment, accountPages, costCenterPages map[int64]string) notionapi.Properties {
	date := notionapi.Date(p.Date)
	props := notionapi.Properties{
		PropID:     title(pageKey(p.ID)),
		PropDate:   notionapi.DateProperty{Date: &notionapi.DateObject{Start: &date}},
		PropAmount: notionapi.NumberProperty{Number: p.Amount.InexactFloat64()},
	}

	if p.Description != "" {
		props[PropDescription] = richText(p.Description)
	}
	if pageID, ok := accountPages[p.AccountID]; ok {
		props[PropAccount] = relation(pageID)
	}
	if pageID, ok := costCenterPages[p.CostCenterID]; ok {
		props[PropCostCenter] = relation(pageID)
	}
	if p.ReceiptPath != nil {
		props[PropReceipt] = richText(*p.ReceiptPath)
	}
	if p.RequestPath != nil {
		props[PropRequest] = richText(*p.RequestPath)
	}

	return props
}

// extractID returns the entity id stored in the page title, or "".
func extractID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropID]; ok {
		if t, ok := prop.(*notionapi.TitleProperty); ok && len(t.Title) > 0 {
			return t.Title[0].PlainText
		}
	}
	return ""
}

package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/report"
)

// parseFilter reads the report filter from query parameters.
// page is 0 when the caller did not ask for a paged response.
func parseFilter(q url.Values) (f report.Filter, page int, err error) {
	if f.StartDate, err = parseDay(q, "startDate"); err != nil {
		return f, 0, err
	}
	if f.EndDate, err = parseDay(q, "endDate"); err != nil {
		return f, 0, err
	}
	if f.CostCenterID, err = parseID(q, "costCenterId"); err != nil {
		return f, 0, err
	}
	if f.AccountID, err = parseID(q, "accountId"); err != nil {
		return f, 0, err
	}
	f.Category = strings.TrimSpace(q.Get("category"))
	f.Search = q.Get("search")

	if s := q.Get("page"); s != "" {
		page, err = strconv.Atoi(s)
		if err != nil {
			return f, 0, domain.NewValidationError("page", "must be an integer")
		}
		// Pages below 1 are clamped by the engine.
		if page < 1 {
			page = 1
		}
	}
	return f, page, nil
}

func parseDay(q url.Values, key string) (*civil.Date, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil, domain.NewValidationError(key, "must be a YYYY-MM-DD date")
	}
	return &d, nil
}

func parseID(q url.Values, key string) (*int64, error) {
	s := q.Get(key)
	if s == "" || s == "all" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, domain.NewValidationError(key, "must be a positive id")
	}
	return &id, nil
}

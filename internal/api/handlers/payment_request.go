package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/payments"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 1 << 20

// paymentRequest is the JSON payload of a payment write. In multipart
// requests it arrives in the "data" field.
type paymentRequest struct {
	Date          *string          `json:"date"`
	Amount        *decimal.Decimal `json:"amount"`
	Description   *string          `json:"description"`
	AccountID     *int64           `json:"accountId"`
	CostCenterID  *int64           `json:"costCenterId"`
	RemoveReceipt bool             `json:"removeReceipt"`
	RemoveRequest bool             `json:"removeRequest"`
}

// toPayment builds a new payment. Plain dates are midnight in loc.
func (p paymentRequest) toPayment(loc *time.Location) (domain.Payment, error) {
	var out domain.Payment
	if p.Date == nil {
		return out, domain.NewValidationError("date", "is required")
	}
	if p.Amount == nil {
		return out, domain.NewValidationError("amount", "is required")
	}
	if p.AccountID == nil {
		return out, domain.NewValidationError("accountId", "is required")
	}
	if p.CostCenterID == nil {
		return out, domain.NewValidationError("costCenterId", "is required")
	}

	date, err := domain.ParseDateIn(*p.Date, loc)
	if err != nil {
		return out, domain.NewValidationError("date", err.Error())
	}

	out = domain.Payment{
		Date:         date,
		Amount:       *p.Amount,
		AccountID:    *p.AccountID,
		CostCenterID: *p.CostCenterID,
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	return out, nil
}

func (p paymentRequest) toPatch(loc *time.Location) (domain.PaymentPatch, error) {
	patch := domain.PaymentPatch{
		Amount:       p.Amount,
		Description:  p.Description,
		AccountID:    p.AccountID,
		CostCenterID: p.CostCenterID,
	}
	if p.Date != nil {
		date, err := domain.ParseDateIn(*p.Date, loc)
		if err != nil {
			return patch, domain.NewValidationError("date", err.Error())
		}
		patch.Date = &date
	}
	return patch, nil
}

func (p paymentRequest) removes(slot domain.Slot) bool {
	if slot == domain.SlotRequest {
		return p.RemoveRequest
	}
	return p.RemoveReceipt
}

// paymentForm is a decoded payment write with any uploaded files.
type paymentForm struct {
	payload paymentRequest
	uploads map[domain.Slot]*payments.Upload
	files   []multipart.File
	form    *multipart.Form
}

// Close releases the uploaded files and any temp files behind them.
func (f *paymentForm) Close() {
	for _, file := range f.files {
		file.Close()
	}
	if f.form != nil {
		f.form.RemoveAll()
	}
}

func (f *paymentForm) changes() map[domain.Slot]payments.AttachmentChange {
	out := make(map[domain.Slot]payments.AttachmentChange, len(domain.Slots))
	for _, slot := range domain.Slots {
		out[slot] = payments.AttachmentChange{Upload: f.uploads[slot], Remove: f.payload.removes(slot)}
	}
	return out
}

// errBadPayload marks request bodies that could not be decoded at all.
var errBadPayload = errors.New("invalid request body")

// readPaymentForm decodes a multipart/form-data or JSON payment write.
// Each file may be at most maxFileBytes long.
func readPaymentForm(w http.ResponseWriter, r *http.Request, maxFileBytes int64) (*paymentForm, error) {
	form := &paymentForm{uploads: make(map[domain.Slot]*payments.Upload)}

	// Two attachments plus the JSON field.
	r.Body = http.MaxBytesReader(w, r.Body, int64(len(domain.Slots))*maxFileBytes+multipartMemory)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&form.payload); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, domain.NewValidationError("data", fmt.Sprintf("request exceeds %d bytes", tooLarge.Limit))
			}
			return nil, errBadPayload
		}
		return form, nil
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.NewValidationError("file", fmt.Sprintf("request exceeds %d bytes", tooLarge.Limit))
		}
		return nil, errBadPayload
	}
	form.form = r.MultipartForm

	data := r.FormValue("data")
	if data == "" {
		form.Close()
		return nil, domain.NewValidationError("data", "is required")
	}
	if err := json.Unmarshal([]byte(data), &form.payload); err != nil {
		form.Close()
		return nil, errBadPayload
	}

	for _, slot := range domain.Slots {
		file, header, err := r.FormFile(string(slot))
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			form.Close()
			return nil, errBadPayload
		}
		form.files = append(form.files, file)
		if header.Size > maxFileBytes {
			form.Close()
			return nil, domain.NewValidationError(string(slot), fmt.Sprintf("file exceeds %d bytes", maxFileBytes))
		}
		form.uploads[slot] = &payments.Upload{Filename: header.Filename, Content: file}
	}

	return form, nil
}

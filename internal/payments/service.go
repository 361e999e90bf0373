// Package payments coordinates payment writes with their attachment files and
// serves the resolved, filtered views used by the API and CLI.
package payments

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/attachments"
	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/relations"
	"github.com/dvloznov/payment-tracker/internal/report"
	"github.com/dvloznov/payment-tracker/internal/store"
)

// Upload is a file sent along with a payment write.
type Upload struct {
	Filename string
	Content  io.Reader
}

// AttachmentChange is the requested change to one slot on update.
// A non-nil Upload replaces the file and wins over Remove.
// Remove clears the slot. The zero value leaves the slot unchanged.
type AttachmentChange struct {
	Upload *Upload
	Remove bool
}

// Cleaner disposes of attachment files no longer referenced by a payment.
type Cleaner interface {
	Cleanup(ctx context.Context, paymentID int64, slot domain.Slot, name string)
}

// SyncCleaner deletes files inline. Failures are logged by the manager.
type SyncCleaner struct {
	Files attachments.Manager
}

func (c SyncCleaner) Cleanup(ctx context.Context, paymentID int64, slot domain.Slot, name string) {
	c.Files.Delete(ctx, name)
}

// Service owns the payment write path: reference checks, attachment
// lifecycle and persistence. Reads are resolved and filtered through the
// report engine.
type Service struct {
	store    store.Store
	files    attachments.Manager
	cleaner  Cleaner
	resolver *relations.Resolver
	engine   *report.Engine
	locks    store.KeyedMutex
	log      zerolog.Logger
}

// NewService creates a Service. A nil cleaner deletes replaced files inline.
func NewService(s store.Store, files attachments.Manager, cleaner Cleaner, engine *report.Engine, log zerolog.Logger) *Service {
	if cleaner == nil {
		cleaner = SyncCleaner{Files: files}
	}
	return &Service{
		store:    s,
		files:    files,
		cleaner:  cleaner,
		resolver: relations.NewResolver(s, s),
		engine:   engine,
		log:      log,
	}
}

// Engine exposes the report engine used by the service.
func (s *Service) Engine() *report.Engine {
	return s.engine
}

// Create validates p, stores the uploads and persists the payment.
// If anything fails after a file was saved, the file is removed again.
func (s *Service) Create(ctx context.Context, p domain.Payment, uploads map[domain.Slot]*Upload) (*domain.PaymentWithRelations, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, &p.AccountID, &p.CostCenterID); err != nil {
		return nil, err
	}
	p.ReceiptPath, p.RequestPath = nil, nil

	var saved []string
	for _, slot := range domain.Slots {
		u := uploads[slot]
		if u == nil {
			continue
		}
		name, err := s.files.Save(ctx, u.Content, u.Filename, slot)
		if err != nil {
			s.discard(ctx, saved)
			return nil, err
		}
		saved = append(saved, name)
		if slot == domain.SlotRequest {
			p.RequestPath = &name
		} else {
			p.ReceiptPath = &name
		}
	}

	created, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		s.discard(ctx, saved)
		return nil, fmt.Errorf("Create: %w", err)
	}

	s.log.Info().Int64("payment_id", created.ID).Int("attachments", len(saved)).Msg("payment created")
	return s.resolver.Resolve(ctx, *created)
}

// Update applies patch and the per-slot attachment changes to payment id.
// Replaced or removed files are handed to the cleaner only after the new
// state is persisted.
func (s *Service) Update(ctx context.Context, id int64, patch domain.PaymentPatch, changes map[domain.Slot]AttachmentChange) (*domain.PaymentWithRelations, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	// Attachment paths are only set through changes.
	patch.Receipt, patch.Request = nil, nil

	unlock := s.locks.Lock(id)
	defer unlock()

	current, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, patch.AccountID, patch.CostCenterID); err != nil {
		return nil, err
	}

	type release struct {
		slot domain.Slot
		name string
	}
	var saved []string
	var stale []release

	for _, slot := range domain.Slots {
		change := changes[slot]
		old := current.AttachmentPath(slot)

		switch {
		case change.Upload != nil:
			name, err := s.files.Save(ctx, change.Upload.Content, change.Upload.Filename, slot)
			if err != nil {
				s.discard(ctx, saved)
				return nil, err
			}
			saved = append(saved, name)
			patch.SetAttachment(slot, &name)
		case change.Remove:
			patch.SetAttachment(slot, nil)
		default:
			continue
		}

		if old != nil {
			stale = append(stale, release{slot: slot, name: *old})
		}
	}

	updated, err := s.store.UpdatePayment(ctx, id, patch)
	if err != nil {
		s.discard(ctx, saved)
		return nil, err
	}

	for _, r := range stale {
		s.cleaner.Cleanup(ctx, id, r.slot, r.name)
	}

	s.log.Info().Int64("payment_id", id).Int("replaced_files", len(stale)).Msg("payment updated")
	return s.resolver.Resolve(ctx, *updated)
}

// Delete removes the payment and then its files. It reports whether the
// payment existed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	current, err := s.store.GetPayment(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ok, err := s.store.DeletePayment(ctx, id)
	if err != nil || !ok {
		return ok, err
	}

	for _, slot := range domain.Slots {
		if name := current.AttachmentPath(slot); name != nil {
			s.cleaner.Cleanup(ctx, id, slot, *name)
		}
	}

	s.log.Info().Int64("payment_id", id).Msg("payment deleted")
	return true, nil
}

// Get returns payment id with its relations.
func (s *Service) Get(ctx context.Context, id int64) (*domain.PaymentWithRelations, error) {
	p, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, *p)
}

// List returns the payments matching f in display order.
func (s *Service) List(ctx context.Context, f report.Filter) ([]domain.PaymentWithRelations, error) {
	all, err := s.resolvedPayments(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.List(all, f), nil
}

// Query is List restricted to one page.
func (s *Service) Query(ctx context.Context, f report.Filter, page int) (report.Page[domain.PaymentWithRelations], error) {
	all, err := s.resolvedPayments(ctx)
	if err != nil {
		return report.Page[domain.PaymentWithRelations]{}, err
	}
	return s.engine.ListPage(all, f, page), nil
}

// Summary aggregates the payments matching f.
func (s *Service) Summary(ctx context.Context, f report.Filter) (report.Summary, error) {
	all, err := s.resolvedPayments(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	return s.engine.Summarize(all, f), nil
}

// Categories lists the distinct cost center categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	costCenters, err := s.store.ListCostCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("Categories: %w", err)
	}
	return s.engine.Categories(costCenters), nil
}

func (s *Service) resolvedPayments(ctx context.Context) ([]domain.PaymentWithRelations, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	return s.resolver.ResolveAll(ctx, payments)
}

// checkReferences rejects writes that point at accounts or cost centers that
// do not exist. Nil ids are not checked.
func (s *Service) checkReferences(ctx context.Context, accountID, costCenterID *int64) error {
	if accountID != nil {
		_, err := s.store.GetAccount(ctx, *accountID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("accountId", fmt.Sprintf("account %d does not exist", *accountID))
		}
		if err != nil {
			return fmt.Errorf("checking account %d: %w", *accountID, err)
		}
	}
	if costCenterID != nil {
		_, err := s.store.GetCostCenter(ctx, *costCenterID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("costCenterId", fmt.Sprintf("cost center %d does not exist", *costCenterID))
		}
		if err != nil {
			return fmt.Errorf("checking cost center %d: %w", *costCenterID, err)
		}
	}
	return nil
}

// discard removes files saved during a write that did not complete.
func (s *Service) discard(ctx context.Context, names []string) {
	for _, name := range names {
		s.files.Delete(ctx, name)
	}
}

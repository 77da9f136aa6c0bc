// Package booking runs the reservation lifecycle: guest submission, admin
// edits and document exports.
package booking

import (
	"context"
	"maps"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tamecovita/reservations/internal/codec"
	"github.com/tamecovita/reservations/internal/docgen"
	"github.com/tamecovita/reservations/internal/models"
	"github.com/tamecovita/reservations/internal/notifier"
	"github.com/tamecovita/reservations/internal/pricing"
	"github.com/tamecovita/reservations/internal/store"
	"go.uber.org/zap"
)

// Submission is the guest form as submitted.
type Submission struct {
	Name          string
	Email         string
	Nights        string
	CheckIn       string
	CheckOut      string
	Location      string
	Apartment     string
	Rate          string
	PaymentMethod string
	PaymentDate   string
	AmountPaid    string
}

type Service struct {
	store        *store.Store
	exporter     *docgen.Exporter
	notifier     notifier.Notifier
	workbookPath string
	log          *zap.Logger
}

func NewService(st *store.Store, exporter *docgen.Exporter, n notifier.Notifier, workbookPath string, log *zap.Logger) *Service {
	if n == nil {
		n = notifier.Nop{}
	}
	return &Service{
		store:        st,
		exporter:     exporter,
		notifier:     n,
		workbookPath: workbookPath,
		log:          log,
	}
}

// Quote prices a stay from raw form values.
func Quote(nights, rate, amountPaid string) pricing.Quote {
	return pricing.Calculate(
		codec.SubmissionNumber(nights).Float64(),
		codec.SubmissionNumber(rate).Float64(),
		codec.SubmissionNumber(amountPaid).Float64(),
	)
}

// Submit prices and stores a guest submission, then writes its customer
// request document. The reservation is returned even when the document
// fails, since it is already stored by then.
func (s *Service) Submit(ctx context.Context, sub Submission) (models.Reservation, error) {
	nights := codec.SubmissionNumber(sub.Nights)
	rate := codec.SubmissionNumber(sub.Rate)
	paid := codec.SubmissionNumber(sub.AmountPaid)
	vat, total, balance := pricing.Calculate(nights.Float64(), rate.Float64(), paid.Float64()).Floats()

	r, err := s.store.Append(ctx, models.ReservationFields{
		GuestName:     strings.TrimSpace(sub.Name),
		Contact:       strings.TrimSpace(sub.Email),
		ApartmentType: strings.TrimSpace(sub.Apartment) + " bedroom",
		Location:      strings.TrimSpace(sub.Location),
		CheckIn:       strings.TrimSpace(sub.CheckIn),
		CheckOut:      strings.TrimSpace(sub.CheckOut),
		Nights:        nights,
		Rate:          rate,
		VAT:           models.Float(vat),
		Total:         models.Float(total),
		AmountPaid:    paid,
		PaymentMethod: strings.TrimSpace(sub.PaymentMethod),
		PaymentDate:   strings.TrimSpace(sub.PaymentDate),
		Balance:       models.Float(balance),
	})
	if err != nil {
		return models.Reservation{}, err
	}
	s.log.Info("Reservation submitted", zap.String("receipt_no", r.ReceiptNo), zap.String("guest", r.GuestName))
	s.syncWorkbook(ctx)

	if _, err := s.exporter.CustomerRequest(r); err != nil {
		return r, errors.Wrapf(err, "customer request for %s", r.ReceiptNo)
	}

	if err := s.notifier.NotifyReservation(r); err != nil {
		s.log.Warn("Failed to send reservation notification", zap.String("receipt_no", r.ReceiptNo), zap.Error(err))
	}
	return r, nil
}

// Update overwrites the fields present in form. Numeric columns keep
// unparseable text verbatim and the receipt number never changes.
func (s *Service) Update(ctx context.Context, receiptNo string, form codec.Row) (models.Reservation, error) {
	row := maps.Clone(form)
	delete(row, codec.ReceiptNo)

	r, err := s.store.Update(ctx, receiptNo, func(r *models.Reservation) {
		codec.Apply(r, row, codec.EditNumber)
	})
	if err != nil {
		return models.Reservation{}, err
	}
	s.log.Info("Reservation updated", zap.String("receipt_no", r.ReceiptNo))
	s.syncWorkbook(ctx)
	return r, nil
}

func (s *Service) Get(ctx context.Context, receiptNo string) (models.Reservation, error) {
	return s.store.Find(ctx, receiptNo)
}

func (s *Service) List(ctx context.Context) ([]models.Reservation, error) {
	return s.store.List(ctx)
}

func (s *Service) Search(ctx context.Context, q string) ([]models.Reservation, error) {
	return s.store.SearchByGuest(ctx, strings.TrimSpace(q))
}

func (s *Service) Revisions(ctx context.Context, receiptNo string) ([]models.ReservationRevision, error) {
	if _, err := s.store.Find(ctx, receiptNo); err != nil {
		return nil, err
	}
	return s.store.Revisions(ctx, receiptNo)
}

// Receipt writes the receipt document and returns its path.
func (s *Service) Receipt(ctx context.Context, receiptNo string) (string, error) {
	r, err := s.store.Find(ctx, receiptNo)
	if err != nil {
		return "", err
	}
	return s.exporter.Receipt(r)
}

// Invoice writes the invoice document and returns its path.
func (s *Service) Invoice(ctx context.Context, receiptNo string) (string, error) {
	r, err := s.store.Find(ctx, receiptNo)
	if err != nil {
		return "", err
	}
	return s.exporter.Invoice(r)
}

// Workbook refreshes the spreadsheet export and returns its path.
func (s *Service) Workbook(ctx context.Context) (string, error) {
	if err := s.store.SaveWorkbook(ctx, s.workbookPath); err != nil {
		return "", err
	}
	return s.workbookPath, nil
}

// EnsureWorkbook writes the header-only (or current) spreadsheet export when
// none exists on disk yet.
func (s *Service) EnsureWorkbook(ctx context.Context) error {
	_, err := os.Stat(s.workbookPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "stat %s", s.workbookPath)
	}
	_, err = s.Workbook(ctx)
	return err
}

func (s *Service) syncWorkbook(ctx context.Context) {
	if err := s.store.SaveWorkbook(ctx, s.workbookPath); err != nil {
		s.log.Warn("Failed to refresh workbook", zap.String("path", s.workbookPath), zap.Error(err))
	}
}

// Package store is the reservations table: append, scan, point update and
// spreadsheet export. Every mutation runs under one mutex inside a
// transaction, so receipt numbers are allocated atomically.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/tamecovita/reservations/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("reservation not found")

type Store struct {
	db *gorm.DB
	mu sync.Mutex
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// NextReceiptNo formats the receipt number following count existing rows.
func NextReceiptNo(count int64) string {
	return fmt.Sprintf("TEC-%04d", count+1)
}

// allocate returns the first free receipt number from the row count onward.
// Must run inside the caller's transaction.
func allocate(tx *gorm.DB) (string, error) {
	var count int64
	if err := tx.Model(&models.Reservation{}).Count(&count).Error; err != nil {
		return "", errors.Wrap(err, "count reservations")
	}
	for n := count; ; n++ {
		id := NextReceiptNo(n)
		var taken int64
		if err := tx.Model(&models.Reservation{}).Where("receipt_no = ?", id).Count(&taken).Error; err != nil {
			return "", errors.Wrap(err, "check receipt number")
		}
		if taken == 0 {
			return id, nil
		}
	}
}

// Append stores a new reservation under the next receipt number.
func (s *Store) Append(ctx context.Context, fields models.ReservationFields) (models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := allocate(tx)
		if err != nil {
			return err
		}
		created = models.Reservation{ReceiptNo: id, ReservationFields: fields}
		return tx.Create(&created).Error
	})
	if err != nil {
		return models.Reservation{}, errors.Wrap(err, "append reservation")
	}
	return created, nil
}

// List returns every reservation in insertion order.
func (s *Store) List(ctx context.Context) ([]models.Reservation, error) {
	var rows []models.Reservation
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list reservations")
	}
	return rows, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Reservation{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count reservations")
	}
	return count, nil
}

func (s *Store) Find(ctx context.Context, receiptNo string) (models.Reservation, error) {
	return find(s.db.WithContext(ctx), receiptNo)
}

func find(tx *gorm.DB, receiptNo string) (models.Reservation, error) {
	var r models.Reservation
	err := tx.Where("receipt_no = ?", receiptNo).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r, errors.Wrapf(ErrNotFound, "receipt %s", receiptNo)
	}
	if err != nil {
		return r, errors.Wrapf(err, "find receipt %s", receiptNo)
	}
	return r, nil
}

// Update applies edit to the stored reservation and saves it. The receipt
// number is kept whatever edit does, and the previous fields are recorded
// as a revision.
func (s *Store) Update(ctx context.Context, receiptNo string, edit func(*models.Reservation)) (models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := find(tx, receiptNo)
		if err != nil {
			return err
		}

		revision := models.ReservationRevision{
			ReceiptNo:         current.ReceiptNo,
			ReservationFields: current.ReservationFields,
		}
		if err := tx.Create(&revision).Error; err != nil {
			return errors.Wrap(err, "save revision")
		}

		updated = current
		edit(&updated)
		updated.Seq = current.Seq
		updated.ReceiptNo = current.ReceiptNo
		updated.CreatedAt = current.CreatedAt
		return tx.Save(&updated).Error
	})
	if err != nil {
		return models.Reservation{}, errors.Wrap(err, "update reservation")
	}
	return updated, nil
}

// Revisions returns the recorded edits of a reservation, oldest first.
func (s *Store) Revisions(ctx context.Context, receiptNo string) ([]models.ReservationRevision, error) {
	var revs []models.ReservationRevision
	err := s.db.WithContext(ctx).Where("receipt_no = ?", receiptNo).Order("id").Find(&revs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "revisions of %s", receiptNo)
	}
	return revs, nil
}

// SearchByGuest matches q case-insensitively against the guest name only.
func (s *Store) SearchByGuest(ctx context.Context, q string) ([]models.Reservation, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(q)
	matches := make([]models.Reservation, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.GuestName), needle) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

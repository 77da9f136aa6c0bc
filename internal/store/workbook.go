package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/tamecovita/reservations/internal/codec"
	"github.com/tamecovita/reservations/internal/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const SheetName = "Reservations"

// WriteWorkbook writes every reservation as an xlsx workbook with the
// canonical header row.
func (s *Store) WriteWorkbook(ctx context.Context, w io.Writer) error {
	rows, err := s.List(ctx)
	if err != nil {
		return err
	}

	f, err := buildWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

// SaveWorkbook replaces the workbook at path. The file is written next to
// path first and renamed into place. Saves are serialized with mutations so
// the last rename always carries the latest rows.
func (s *Store) SaveWorkbook(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".workbook-*.xlsx")
	if err != nil {
		return errors.Wrap(err, "create temp workbook")
	}
	defer os.Remove(tmp.Name())

	if err := s.WriteWorkbook(ctx, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp workbook")
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "replace %s", path)
}

func buildWorkbook(rows []models.Reservation) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "name sheet")
	}

	widths := make([]int, len(codec.Headers))
	header := make([]any, len(codec.Headers))
	for i, h := range codec.Headers {
		header[i] = h
		widths[i] = len(h)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "write header")
	}

	for i, r := range rows {
		cells := codec.Cells(r)
		for j, c := range cells {
			widths[j] = max(widths[j], len(fmt.Sprint(c)))
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(SheetName, axis, &cells); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "write row %s", r.ReceiptNo)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "column name")
		}
		if err := f.SetColWidth(SheetName, col, col, float64(w+5)); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "column width")
		}
	}
	return f, nil
}

type ImportResult struct {
	Imported int
	// Renumbered maps a duplicate or blank legacy receipt number to the one it received.
	Renumbered map[string]string
}

// ImportWorkbook loads a legacy workbook into an empty store. It is a no-op
// when path does not exist or the store already holds reservations.
func (s *Store) ImportWorkbook(ctx context.Context, path string) (ImportResult, error) {
	result := ImportResult{Renumbered: map[string]string{}}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return result, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return result, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	sheetRows, err := f.GetRows(sheet)
	if err != nil {
		return result, errors.Wrapf(err, "read sheet %s", sheet)
	}
	if len(sheetRows) < 2 {
		return result, nil
	}
	headers := sheetRows[0]

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Reservation{}).Count(&count).Error; err != nil {
			return errors.Wrap(err, "count reservations")
		}
		if count > 0 {
			return nil
		}

		seen := map[string]bool{}
		for _, cells := range sheetRows[1:] {
			if blank(cells) {
				continue
			}
			r := codec.Decode(codec.Zip(headers, cells), codec.EditNumber)
			if r.ReceiptNo == "" || seen[r.ReceiptNo] {
				id, err := allocate(tx)
				if err != nil {
					return err
				}
				result.Renumbered[r.ReceiptNo] = id
				r.ReceiptNo = id
			}
			seen[r.ReceiptNo] = true
			if err := tx.Create(&r).Error; err != nil {
				return errors.Wrapf(err, "import %s", r.ReceiptNo)
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "import workbook")
	}
	return result, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

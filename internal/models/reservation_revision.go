package models

import (
	"gorm.io/gorm"
)

// ReservationRevision snapshots a reservation as it was before an admin edit.
type ReservationRevision struct {
	gorm.Model
	ReceiptNo         string `json:"receipt_no" gorm:"index"`
	ReservationFields `gorm:"embedded"`
}

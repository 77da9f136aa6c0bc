package handlers

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/danielgtaylor/huma/v2"
	"github.com/tamecovita/reservations/internal/models"
	"github.com/tamecovita/reservations/internal/pricing"
	"github.com/tamecovita/reservations/internal/store"
)

// ReservationBody is the JSON form of a reservation. Numeric columns are
// strings because an admin edit may leave text in them.
type ReservationBody struct {
	ReceiptNo     string    `json:"receipt_no" example:"TEC-0001"`
	GuestName     string    `json:"guest_name"`
	Contact       string    `json:"contact"`
	ApartmentType string    `json:"apartment_type" example:"2 bedroom"`
	Location      string    `json:"location"`
	CheckIn       string    `json:"check_in" example:"2025-01-10"`
	CheckOut      string    `json:"check_out" example:"2025-01-13"`
	Nights        string    `json:"nights"`
	Rate          string    `json:"rate"`
	VAT           string    `json:"vat"`
	Total         string    `json:"total"`
	AmountPaid    string    `json:"amount_paid"`
	PaymentMethod string    `json:"payment_method"`
	PaymentDate   string    `json:"payment_date"`
	Balance       string    `json:"balance"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

func fieldsBody(receiptNo string, f models.ReservationFields) ReservationBody {
	return ReservationBody{
		ReceiptNo:     receiptNo,
		GuestName:     f.GuestName,
		Contact:       f.Contact,
		ApartmentType: f.ApartmentType,
		Location:      f.Location,
		CheckIn:       f.CheckIn,
		CheckOut:      f.CheckOut,
		Nights:        f.Nights.String(),
		Rate:          f.Rate.String(),
		VAT:           f.VAT.String(),
		Total:         f.Total.String(),
		AmountPaid:    f.AmountPaid.String(),
		PaymentMethod: f.PaymentMethod,
		PaymentDate:   f.PaymentDate,
		Balance:       f.Balance.String(),
	}
}

func reservationBody(r models.Reservation) ReservationBody {
	body := fieldsBody(r.ReceiptNo, r.ReservationFields)
	body.CreatedAt = r.CreatedAt
	body.UpdatedAt = r.UpdatedAt
	return body
}

func reservationBodies(rows []models.Reservation) []ReservationBody {
	out := make([]ReservationBody, len(rows))
	for i, r := range rows {
		out[i] = reservationBody(r)
	}
	return out
}

type ListOutput struct {
	Body struct {
		Reservations []ReservationBody `json:"reservations"`
	}
}

type ReceiptInput struct {
	ReceiptNo string `path:"receiptNo" doc:"Receipt number" example:"TEC-0001"`
}

type ReservationOutput struct {
	Body ReservationBody
}

type SearchInput struct {
	Q string `query:"q" doc:"Case-insensitive fragment of the guest name"`
}

type RevisionBody struct {
	EditedAt time.Time       `json:"edited_at"`
	Previous ReservationBody `json:"previous"`
}

type RevisionsOutput struct {
	Body struct {
		Revisions []RevisionBody `json:"revisions"`
	}
}

type QuoteInput struct {
	Body struct {
		Nights     float64 `json:"nights" minimum:"0" doc:"Number of nights"`
		Rate       float64 `json:"rate" minimum:"0" doc:"Rate per night"`
		AmountPaid float64 `json:"amount_paid" doc:"Amount already paid"`
	}
}

type QuoteOutput struct {
	Body pricing.Display
}

func (h *Handler) HandleListReservations(ctx context.Context, _ *struct{}) (*ListOutput, error) {
	rows, err := h.svc.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load reservations", err)
	}
	res := &ListOutput{}
	res.Body.Reservations = reservationBodies(rows)
	return res, nil
}

func (h *Handler) HandleGetReservation(ctx context.Context, input *ReceiptInput) (*ReservationOutput, error) {
	r, err := h.svc.Get(ctx, input.ReceiptNo)
	if errors.Is(err, store.ErrNotFound) {
		return nil, huma.Error404NotFound("Record not found")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load reservation", err)
	}
	return &ReservationOutput{Body: reservationBody(r)}, nil
}

func (h *Handler) HandleSearchReservations(ctx context.Context, input *SearchInput) (*ListOutput, error) {
	rows, err := h.svc.Search(ctx, input.Q)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to search reservations", err)
	}
	res := &ListOutput{}
	res.Body.Reservations = reservationBodies(rows)
	return res, nil
}

func (h *Handler) HandleRevisions(ctx context.Context, input *ReceiptInput) (*RevisionsOutput, error) {
	revs, err := h.svc.Revisions(ctx, input.ReceiptNo)
	if errors.Is(err, store.ErrNotFound) {
		return nil, huma.Error404NotFound("Record not found")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load revisions", err)
	}

	res := &RevisionsOutput{}
	res.Body.Revisions = make([]RevisionBody, len(revs))
	for i, rev := range revs {
		res.Body.Revisions[i] = RevisionBody{
			EditedAt: rev.CreatedAt,
			Previous: fieldsBody(rev.ReceiptNo, rev.ReservationFields),
		}
	}
	return res, nil
}

func (h *Handler) HandleQuote(ctx context.Context, input *QuoteInput) (*QuoteOutput, error) {
	q := pricing.Calculate(input.Body.Nights, input.Body.Rate, input.Body.AmountPaid)
	return &QuoteOutput{Body: q.Fixed()}, nil
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/tamecovita/reservations/internal/booking"
	"github.com/tamecovita/reservations/internal/models"
	"go.uber.org/zap"
)

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home.html", nil)
}

func (h *Handler) Logo(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, h.opts.LogoPath)
}

type customerForm struct {
	Locations      []string
	PaymentMethods []string
}

func (h *Handler) CustomerForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "customer.html", customerForm{
		Locations:      models.Locations,
		PaymentMethods: models.PaymentMethods,
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Submit(r.Context(), booking.Submission{
		Name:          r.PostFormValue("name"),
		Email:         r.PostFormValue("email"),
		Nights:        r.PostFormValue("total_days"),
		CheckIn:       r.PostFormValue("date_coming"),
		CheckOut:      r.PostFormValue("date_going"),
		Location:      r.PostFormValue("place"),
		Apartment:     r.PostFormValue("apartment"),
		Rate:          r.PostFormValue("reservation_fee"),
		PaymentMethod: r.PostFormValue("payment"),
		PaymentDate:   r.PostFormValue("date"),
		AmountPaid:    r.PostFormValue("amount_paid"),
	})
	if err != nil && res.ReceiptNo == "" {
		h.serverError(w, "Failed to save reservation", err)
		return
	}
	if err != nil {
		// Stored, but the customer request document could not be written.
		h.log.Error("Failed to write customer request", zap.String("receipt_no", res.ReceiptNo), zap.Error(err))
	}

	flash(w, r, fmt.Sprintf("Reservation submitted! Receipt No: %s", res.ReceiptNo))
	http.Redirect(w, r, "/customer", http.StatusFound)
}

package handlers

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/tamecovita/reservations/internal/auth"
	"github.com/tamecovita/reservations/internal/codec"
	"github.com/tamecovita/reservations/internal/models"
	"github.com/tamecovita/reservations/internal/store"
)

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.gate.Authenticated(r) {
		http.Redirect(w, r, "/index", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", nil)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	err := h.gate.Login(w, r.PostFormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.render(w, r, "login.html", nil, "Incorrect password.")
		return
	}
	if err != nil {
		h.serverError(w, "Failed to start session", err)
		return
	}
	http.Redirect(w, r, "/index", http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.gate.Logout(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.List(r.Context())
	if err != nil {
		h.serverError(w, "Failed to load reservations", err)
		return
	}
	h.render(w, r, "index.html", rows)
}

type editField struct {
	Header   string
	Value    string
	Numeric  bool
	ReadOnly bool
}

type editForm struct {
	ReceiptNo string
	Fields    []editField
}

func newEditForm(res models.Reservation) editForm {
	row := codec.Encode(res)
	form := editForm{ReceiptNo: res.ReceiptNo}
	for _, header := range codec.Headers {
		form.Fields = append(form.Fields, editField{
			Header:   header,
			Value:    row[header],
			Numeric:  codec.IsNumeric(header),
			ReadOnly: header == codec.ReceiptNo,
		})
	}
	return form
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Get(r.Context(), chi.URLParam(r, "receiptNo"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, "Failed to load reservation", err)
		return
	}
	h.render(w, r, "edit.html", newEditForm(res))
}

// Update overwrites the submitted columns verbatim. An unknown receipt
// number changes nothing.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := codec.Row{}
	for _, header := range codec.Headers {
		if values, ok := r.PostForm[header]; ok && len(values) > 0 {
			form[header] = values[0]
		}
	}

	receiptNo := chi.URLParam(r, "receiptNo")
	_, err := h.svc.Update(r.Context(), receiptNo, form)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		h.serverError(w, "Failed to update reservation", err)
		return
	default:
		flash(w, r, "Reservation "+receiptNo+" updated.")
	}
	http.Redirect(w, r, "/index", http.StatusFound)
}

type searchResults struct {
	Query   string
	Results []models.Reservation
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := h.svc.Search(r.Context(), q)
	if err != nil {
		h.serverError(w, "Failed to search reservations", err)
		return
	}
	h.render(w, r, "search.html", searchResults{Query: q, Results: results})
}

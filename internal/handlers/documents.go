package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/tamecovita/reservations/internal/docgen"
	"github.com/tamecovita/reservations/internal/store"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

func attachment(w http.ResponseWriter, r *http.Request, path, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.Workbook(r.Context())
	if err != nil {
		h.serverError(w, "Failed to export workbook", err)
		return
	}
	attachment(w, r, path, xlsxContentType)
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.Receipt(r.Context(), chi.URLParam(r, "receiptNo"))
	if err != nil {
		h.documentError(w, "Receipt", err)
		return
	}
	attachment(w, r, path, docxContentType)
}

func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.Invoice(r.Context(), chi.URLParam(r, "receiptNo"))
	if err != nil {
		h.documentError(w, "Invoice", err)
		return
	}
	attachment(w, r, path, docxContentType)
}

func (h *Handler) documentError(w http.ResponseWriter, kind string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, kind+" not found", http.StatusNotFound)
	case errors.Is(err, docgen.ErrTemplateMissing):
		h.serverError(w, kind+" template not found", err)
	default:
		h.serverError(w, "Failed to generate "+kind, err)
	}
}

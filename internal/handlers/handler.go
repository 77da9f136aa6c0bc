package handlers

import (
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"
	"strings"

	"github.com/tamecovita/reservations/internal/auth"
	"github.com/tamecovita/reservations/internal/booking"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = parsePages("home.html", "customer.html", "login.html", "index.html", "edit.html", "search.html")

func parsePages(names ...string) map[string]*template.Template {
	set := make(map[string]*template.Template, len(names))
	for _, name := range names {
		set[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return set
}

type Options struct {
	SiteName string
	LogoPath string
}

type Handler struct {
	svc  *booking.Service
	gate *auth.Gate
	opts Options
	log  *zap.Logger
}

func NewHandler(svc *booking.Service, gate *auth.Gate, opts Options, log *zap.Logger) *Handler {
	return &Handler{svc: svc, gate: gate, opts: opts, log: log}
}

type pageData struct {
	SiteName string
	Admin    bool
	Flashes  []string
	Data     any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any, flashes ...string) {
	page := pageData{
		SiteName: h.opts.SiteName,
		Admin:    auth.IsAdmin(r.Context()),
		Flashes:  append(popFlashes(w, r), flashes...),
		Data:     data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages[name].ExecuteTemplate(w, "layout", page); err != nil {
		h.log.Error("Failed to render page", zap.String("page", name), zap.Error(err))
	}
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	http.Error(w, msg, http.StatusInternalServerError)
}

const flashCookie = "flash"

// flash queues a one-time message for the next rendered page.
func flash(w http.ResponseWriter, r *http.Request, msg string) {
	msgs := append(peekFlashes(r), msg)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(strings.Join(msgs, "\n"))),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func peekFlashes(r *http.Request) []string {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil || len(raw) == 0 {
		return nil
	}
	return strings.Split(string(raw), "\n")
}

func popFlashes(w http.ResponseWriter, r *http.Request) []string {
	msgs := peekFlashes(r)
	if msgs != nil {
		http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	}
	return msgs
}

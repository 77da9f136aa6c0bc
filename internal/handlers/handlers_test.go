package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tamecovita/reservations/internal/auth"
	"github.com/tamecovita/reservations/internal/booking"
	"github.com/tamecovita/reservations/internal/codec"
	"github.com/tamecovita/reservations/internal/config"
	"github.com/tamecovita/reservations/internal/database"
	"github.com/tamecovita/reservations/internal/docgen"
	"github.com/tamecovita/reservations/internal/notifier"
	"github.com/tamecovita/reservations/internal/pricing"
	"github.com/tamecovita/reservations/internal/store"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router   *chi.Mux
	svc      *booking.Service
	exporter *docgen.Exporter
	session  *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	dir := t.TempDir()
	exporter := &docgen.Exporter{
		RequestsDir:     filepath.Join(dir, "requests"),
		ExportsDir:      filepath.Join(dir, "exports"),
		ReceiptTemplate: filepath.Join(dir, "receipt_template.docx"),
		InvoiceTemplate: filepath.Join(dir, "invoice_template.docx"),
	}
	svc := booking.NewService(store.New(db), exporter, notifier.Nop{}, filepath.Join(dir, "TamEcoVita_host_file.xlsx"), zap.NewNop())

	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)
	gate := auth.NewGate(&config.Config{AppSecret: "test-secret", AdminPasswordHash: string(hash)})
	token, err := gate.GenerateToken()
	require.NoError(t, err)

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(svc, gate, Options{SiteName: "TamEcoVita Suites", LogoPath: filepath.Join(dir, "logo.png")}, zap.NewNop()))

	return &testServer{
		router:   r,
		svc:      svc,
		exporter: exporter,
		session:  &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

func (s *testServer) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func guestForm(name string) url.Values {
	return url.Values{
		"name":            {name},
		"email":           {"guest@mail.com"},
		"total_days":      {"3"},
		"date_coming":     {"2025-03-01"},
		"date_going":      {"2025-03-04"},
		"place":           {"Gwarinpa"},
		"apartment":       {"2"},
		"reservation_fee": {"100"},
		"payment":         {"Cash"},
		"date":            {"2025-02-28"},
		"amount_paid":     {"200"},
	}
}

func (s *testServer) submit(t *testing.T, name string) *httptest.ResponseRecorder {
	t.Helper()
	rr := s.do(postForm("/submit", guestForm(name)))
	require.Equal(t, http.StatusFound, rr.Code)
	return rr
}

func TestPublicPages(t *testing.T) {
	s := newTestServer(t)

	t.Run("root redirects home", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/home", rr.Header().Get("Location"))
	})

	t.Run("home", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/home", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Welcome to TamEcoVita Suites")
		assert.Contains(t, rr.Body.String(), "TAM Ecovista Properties")
		assert.NotContains(t, rr.Body.String(), `class="admin-bar"`)
	})

	t.Run("customer form", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/customer", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, `<option value="Gwarinpa">Gwarinpa</option>`)
		assert.Contains(t, body, `<option value="Google Pay">Google Pay</option>`)
		assert.Contains(t, body, `name="reservation_fee"`)
	})

	t.Run("health", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, "OK", rr.Body.String())
	})

	t.Run("missing logo", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/logo.png", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSubmit(t *testing.T) {
	s := newTestServer(t)

	rr := s.submit(t, "Ada Obi")
	assert.Equal(t, "/customer", rr.Header().Get("Location"))

	page := s.do(httptest.NewRequest(http.MethodGet, "/customer", nil), rr.Result().Cookies()...)
	assert.Contains(t, page.Body.String(), "Reservation submitted! Receipt No: TEC-0001")

	r, err := s.svc.Get(t.Context(), "TEC-0001")
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", r.GuestName)
	assert.Equal(t, "2 bedroom", r.ApartmentType)
	assert.Equal(t, "322.50", r.Total.Fixed())
	assert.Equal(t, "122.50", r.Balance.Fixed())

	_, err = os.Stat(filepath.Join(s.exporter.RequestsDir, "CustomerRequest_TEC-0001.docx"))
	assert.NoError(t, err)

	rr = s.submit(t, "Chinedu")
	page = s.do(httptest.NewRequest(http.MethodGet, "/customer", nil), rr.Result().Cookies()...)
	assert.Contains(t, page.Body.String(), "Receipt No: TEC-0002")
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	t.Run("admin pages redirect to login", func(t *testing.T) {
		for _, path := range []string{"/index", "/edit/TEC-0001", "/search?q=ada"} {
			rr := s.do(httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusFound, rr.Code, path)
			assert.Equal(t, "/login", rr.Header().Get("Location"), path)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := s.do(postForm("/login", url.Values{"password": {"guess"}}))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Incorrect password.")
	})

	t.Run("correct password", func(t *testing.T) {
		rr := s.do(postForm("/login", url.Values{"password": {"letmein"}}))
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/index", rr.Header().Get("Location"))

		index := s.do(httptest.NewRequest(http.MethodGet, "/index", nil), rr.Result().Cookies()...)
		assert.Equal(t, http.StatusOK, index.Code)
		assert.Contains(t, index.Body.String(), "Admin Dashboard")
	})

	t.Run("logout", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/logout", nil), s.session)
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
		cookies := rr.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Empty(t, cookies[0].Value)
	})
}

func TestAdminPages(t *testing.T) {
	s := newTestServer(t)

	t.Run("edit missing record", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/edit/TEC-9999", nil), s.session)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Record not found")
	})

	s.submit(t, "Ada Obi")
	chinedu := guestForm("Chinedu")
	chinedu.Set("email", "ada@mail.com")
	require.Equal(t, http.StatusFound, s.do(postForm("/submit", chinedu)).Code)

	t.Run("index lists reservations", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/index", nil), s.session)
		body := rr.Body.String()
		assert.Contains(t, body, "TEC-0001")
		assert.Contains(t, body, "TEC-0002")
		assert.Contains(t, body, "/invoice/TEC-0002/download")
	})

	t.Run("edit form", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/edit/TEC-0001", nil), s.session)
		assert.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, `name="Guest Name" value="Ada Obi"`)
		assert.Contains(t, body, `name="VAT" value="22.5" inputmode="decimal"`)
		assert.Contains(t, body, `name="Guest Name" value="Ada Obi">`)
		assert.Contains(t, body, `class="admin-bar"`)
	})

	t.Run("update guest name only", func(t *testing.T) {
		before, err := s.svc.Get(t.Context(), "TEC-0001")
		require.NoError(t, err)

		form := url.Values{}
		for header, value := range codec.Encode(before) {
			form.Set(header, value)
		}
		form.Set(codec.GuestName, "Ada Eze")
		form.Set(codec.ReceiptNo, "TEC-0999")

		rr := s.do(postForm("/update/TEC-0001", form), s.session)
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/index", rr.Header().Get("Location"))

		after, err := s.svc.Get(t.Context(), "TEC-0001")
		require.NoError(t, err)
		want := before.ReservationFields
		want.GuestName = "Ada Eze"
		assert.Equal(t, want, after.ReservationFields)
	})

	t.Run("update unknown receipt", func(t *testing.T) {
		rr := s.do(postForm("/update/TEC-9999", url.Values{codec.GuestName: {"x"}}), s.session)
		assert.Equal(t, http.StatusFound, rr.Code)
		rows, err := s.svc.List(t.Context())
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("search is guest name only", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/search?q=ADA", nil), s.session)
		body := rr.Body.String()
		assert.Contains(t, body, "Ada Eze")
		assert.NotContains(t, body, "Chinedu")
	})
}

func TestDocuments(t *testing.T) {
	s := newTestServer(t)

	t.Run("not found", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/receipt/TEC-9999/word", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Receipt not found")

		rr = s.do(httptest.NewRequest(http.MethodGet, "/invoice/TEC-9999/download", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invoice not found")
	})

	s.submit(t, "Ada Obi")

	t.Run("missing template", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/receipt/TEC-0001/word", nil))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		rows, err := s.svc.List(t.Context())
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("receipt download", func(t *testing.T) {
		tmpl, err := docgen.NewDocument().Paragraph("Receipt {RECEIPT_NO} for {GUEST_NAME}: {TOTAL}").Bytes()
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(s.exporter.ReceiptTemplate, tmpl, 0o644))

		rr := s.do(httptest.NewRequest(http.MethodGet, "/receipt/TEC-0001/word", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Disposition"), `filename="Receipt_TEC-0001.docx"`)

		text, err := docgen.PlainText(rr.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "Receipt TEC-0001 for Ada Obi: 322.50", text)
	})

	t.Run("workbook download", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/download", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))

		f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(store.SheetName)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, codec.Headers, rows[0])
		assert.Equal(t, "TEC-0001", rows[1][0])
	})
}

func TestAPI(t *testing.T) {
	s := newTestServer(t)
	s.submit(t, "Ada Obi")

	t.Run("requires session", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/api/reservations", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("list", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/api/reservations", nil), s.session)
		require.Equal(t, http.StatusOK, rr.Code)

		var out struct {
			Reservations []ReservationBody `json:"reservations"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		require.Len(t, out.Reservations, 1)
		assert.Equal(t, "TEC-0001", out.Reservations[0].ReceiptNo)
		assert.Equal(t, "322.5", out.Reservations[0].Total)
	})

	t.Run("get missing", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/api/reservations/TEC-9999", nil), s.session)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("search", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/api/reservations/search?q=obi", nil), s.session)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Ada Obi")
	})

	t.Run("revisions", func(t *testing.T) {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/api/reservations/TEC-0001/revisions", nil), s.session)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"revisions":[]`)
	})

	t.Run("quote", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/quote", strings.NewReader(`{"nights":3,"rate":100,"amount_paid":200}`))
		req.Header.Set("Content-Type", "application/json")
		rr := s.do(req, s.session)
		require.Equal(t, http.StatusOK, rr.Code)

		var out pricing.Display
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, pricing.Display{Subtotal: "300.00", VAT: "22.50", Total: "322.50", Balance: "122.50"}, out)
	})
}

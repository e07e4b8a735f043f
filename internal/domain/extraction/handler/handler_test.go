package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyapp/moneyapp/internal/domain/categorization"
	"github.com/moneyapp/moneyapp/internal/domain/extraction"
	"github.com/moneyapp/moneyapp/internal/domain/extraction/statement"
	"github.com/moneyapp/moneyapp/internal/domain/ledger"
	"github.com/moneyapp/moneyapp/internal/domain/transaction"
	"github.com/moneyapp/moneyapp/pkg/metrics"
	"github.com/moneyapp/moneyapp/pkg/storage"
)

type fakeDocs struct {
	pages []statement.Page
	err   error
}

func (f *fakeDocs) Pages([]byte) ([]statement.Page, error) {
	return f.pages, f.err
}

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) Text(context.Context, []byte, string) (string, error) {
	return f.text, f.err
}

type fakeTabular struct {
	headers []string
	rows    [][]string
	err     error
}

func (f *fakeTabular) Read([]byte) ([]string, [][]string, error) {
	return f.headers, f.rows, f.err
}

type testEnv struct {
	router *mux.Router
	store  *ledger.Store
}

func newTestEnv(t *testing.T, docs extraction.DocumentExtractor, ocr extraction.OCRClient, csv, excel extraction.TabularReader) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := ledger.NewStore(filepath.Join(t.TempDir(), "transactions.json"), logger)
	require.NoError(t, err)

	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	svc := extraction.NewService(docs, ocr, logger).WithTabularReaders(csv, excel)
	h := New(svc, store, categorization.NewEngine(), metrics.New(prometheus.NewRegistry()), logger).
		WithArchive(archive)

	router := mux.NewRouter()
	h.Register(router)
	return &testEnv{router: router, store: store}
}

func upload(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestBanks(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/banks", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Banks []string `json:"banks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Banks, 5)
	assert.Contains(t, body.Banks, "HDFC Bank")
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Categories, 10)
}

func TestProcessStatement_PDF(t *testing.T) {
	docs := &fakeDocs{pages: []statement.Page{{
		Text: "HDFC BANK Statement\n01/02/23 UPI-SWIGGY ORDER 500.00 Dr\n",
	}}}
	env := newTestEnv(t, docs, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	buf, contentType := upload(t, "file", "statement.pdf", []byte("%PDF-1.7 rest"))
	req := httptest.NewRequest(http.MethodPost, "/transactions/process-statement", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "HDFC Bank", body["bank"])
	assert.EqualValues(t, 1, body["transactions_count"])
	assert.NotEmpty(t, body["upload_id"])

	entries, err := env.store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// The categorizer runs before the ledger write.
	assert.Equal(t, "Food & Dining", entries[0].Category)

	// The raw upload is archived for replay.
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var uploads struct {
		Uploads []storage.FileInfo `json:"uploads"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploads))
	require.Len(t, uploads.Uploads, 1)
	assert.Equal(t, "statement.pdf", uploads.Uploads[0].Name)
	assert.Equal(t, "document", uploads.Uploads[0].Kind)
}

func TestProcessStatement_CSV(t *testing.T) {
	csv := &fakeTabular{
		headers: []string{"Date", "Narration", "Debit", "Credit", "Balance"},
		rows:    [][]string{{"01/02/23", "Grocery Store", "500.00", "", "10000"}},
	}
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{}, csv, &fakeTabular{})

	buf, contentType := upload(t, "file", "statement.csv", []byte("Date,Narration,Debit,Credit,Balance"))
	req := httptest.NewRequest(http.MethodPost, "/transactions/process-statement", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HDFC Bank", decode(t, rec)["bank"])
}

func TestProcessStatement_MissingFile(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	req := httptest.NewRequest(http.MethodPost, "/transactions/process-statement", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessStatement_BankNotDetected(t *testing.T) {
	docs := &fakeDocs{pages: []statement.Page{{Text: "no identifiers anywhere"}}}
	env := newTestEnv(t, docs, &fakeOCR{err: errors.New("quota")}, &fakeTabular{}, &fakeTabular{})

	buf, contentType := upload(t, "file", "statement.pdf", []byte("%PDF-1.7"))
	req := httptest.NewRequest(http.MethodPost, "/transactions/process-statement", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["detail"], "bank")
}

func TestProcessStatement_ExtractorFailure(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{err: errors.New("corrupt xref")}, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	buf, contentType := upload(t, "file", "statement.pdf", []byte("%PDF-1.7"))
	req := httptest.NewRequest(http.MethodPost, "/transactions/process-statement", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestProcessImage(t *testing.T) {
	ocr := &fakeOCR{text: "01 Jan 2024\nPaid to John Doe ₹250.00"}
	env := newTestEnv(t, &fakeDocs{}, ocr, &fakeTabular{}, &fakeTabular{})

	buf, contentType := upload(t, "image", "shot.png", []byte{0x89, 'P', 'N', 'G'})
	req := httptest.NewRequest(http.MethodPost, "/transactions/process", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["transactions_count"])
	assert.Empty(t, body["bank"])
}

func TestProcessImage_OCRFailure(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{err: errors.New("quota exhausted")}, &fakeTabular{}, &fakeTabular{})

	buf, contentType := upload(t, "image", "shot.png", []byte{0x89, 'P', 'N', 'G'})
	req := httptest.NewRequest(http.MethodPost, "/transactions/process", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestProcessImage_Reupload_SkipsDuplicates(t *testing.T) {
	ocr := &fakeOCR{text: "01 Jan 2024\nPaid to John Doe ₹250.00"}
	env := newTestEnv(t, &fakeDocs{}, ocr, &fakeTabular{}, &fakeTabular{})

	for i, wantSaved := range []float64{1, 0} {
		buf, contentType := upload(t, "image", "shot.png", []byte{0x89, 'P', 'N', 'G'})
		req := httptest.NewRequest(http.MethodPost, "/transactions/process", buf)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "upload %d", i)
		assert.EqualValues(t, wantSaved, decode(t, rec)["transactions_count"])
	}
}

func TestUpdateCategory(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	_, err := env.store.Add([]transaction.Transaction{{
		Date:        "2024-03-12",
		Description: "Mystery Merchant",
		Amount:      mustDecimal(t, "500.00"),
		Type:        transaction.TypeDebit,
		Category:    "Other",
	}})
	require.NoError(t, err)
	entries, err := env.store.List()
	require.NoError(t, err)

	payload := bytes.NewBufferString(`{"category":"Food & Dining"}`)
	req := httptest.NewRequest(http.MethodPut, "/transactions/"+entries[0].ID.String()+"/category", payload)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Other", body["old_category"])
	assert.Equal(t, "Food & Dining", body["new_category"])
}

func TestUpdateCategory_Errors(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{"malformed id", "/transactions/not-a-uuid/category", `{"category":"Other"}`, http.StatusBadRequest},
		{"unknown category", "/transactions/" + uuid.NewString() + "/category", `{"category":"Yachts"}`, http.StatusBadRequest},
		{"unknown id", "/transactions/" + uuid.NewString() + "/category", `{"category":"Other"}`, http.StatusNotFound},
		{"bad body", "/transactions/" + uuid.NewString() + "/category", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, tt.target, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestListTransactions(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	_, err := env.store.Add([]transaction.Transaction{
		{Date: "2024-03-12", Description: "Older", Amount: mustDecimal(t, "100.00"), Type: transaction.TypeDebit},
		{Date: "2024-03-14", Description: "Newer", Amount: mustDecimal(t, "200.00"), Type: transaction.TypeDebit},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count        int            `json:"count"`
		Transactions []ledger.Entry `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Transactions, 2)
	assert.Equal(t, "Newer", body.Transactions[0].Description)
}

func TestSummaryAndClear(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	_, err := env.store.Add([]transaction.Transaction{{
		Date:        "2024-03-12",
		Description: "Grocery Store",
		Amount:      mustDecimal(t, "500.00"),
		Type:        transaction.TypeDebit,
	}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transactions/clear", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := env.store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t, &fakeDocs{}, &fakeOCR{}, &fakeTabular{}, &fakeTabular{})

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "transactions.csv")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := rl.Middleware(next)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client keeps its own budget.
	other := httptest.NewRequest(http.MethodGet, "/health", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

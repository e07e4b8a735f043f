// Package handler exposes the extraction pipeline and ledger over JSON
// HTTP endpoints.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/moneyapp/moneyapp/internal/domain/categorization"
	"github.com/moneyapp/moneyapp/internal/domain/extraction"
	"github.com/moneyapp/moneyapp/internal/domain/extraction/bank"
	"github.com/moneyapp/moneyapp/internal/domain/extraction/tabular"
	"github.com/moneyapp/moneyapp/internal/domain/ledger"
	"github.com/moneyapp/moneyapp/internal/domain/transaction"
	"github.com/moneyapp/moneyapp/pkg/metrics"
	"github.com/moneyapp/moneyapp/pkg/storage"
)

// maxUploadBytes caps statement and screenshot uploads at 10MB.
const maxUploadBytes = 10 << 20

// Handler wires HTTP routes to the extraction service and ledger.
type Handler struct {
	svc     *extraction.Service
	store   *ledger.Store
	engine  *categorization.Engine
	metrics *metrics.Metrics
	archive storage.Archive
	logger  *slog.Logger
}

func New(svc *extraction.Service, store *ledger.Store, engine *categorization.Engine, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, store: store, engine: engine, metrics: m, logger: logger}
}

// WithArchive keeps a copy of every processed upload so a bad extraction
// can be replayed later.
func (h *Handler) WithArchive(a storage.Archive) *Handler {
	h.archive = a
	return h
}

// Register attaches all routes to the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/banks", h.banks).Methods(http.MethodGet)
	r.HandleFunc("/categories", h.categories).Methods(http.MethodGet)
	r.HandleFunc("/uploads", h.uploads).Methods(http.MethodGet)
	r.HandleFunc("/transactions", h.list).Methods(http.MethodGet)
	r.HandleFunc("/transactions/summary", h.summary).Methods(http.MethodGet)
	r.HandleFunc("/transactions/export", h.exportCSV).Methods(http.MethodGet)
	r.HandleFunc("/transactions/process", h.processImage).Methods(http.MethodPost)
	r.HandleFunc("/transactions/process-statement", h.processStatement).Methods(http.MethodPost)
	r.HandleFunc("/transactions/clear", h.clear).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{id}/category", h.updateCategory).Methods(http.MethodPut)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) banks(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(bank.All))
	for _, b := range bank.All {
		names = append(names, b.DisplayName())
	}
	writeJSON(w, http.StatusOK, map[string][]string{"banks": names})
}

func (h *Handler) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": h.engine.Categories()})
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	entries, err := h.store.List()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":        len(entries),
		"transactions": entries,
	})
}

func (h *Handler) summary(w http.ResponseWriter, _ *http.Request) {
	sum, err := h.store.Summarize()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.metrics.LedgerSize.Set(float64(len(sum.Transactions)))
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) exportCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := h.store.ExportCSV(w); err != nil {
		h.logger.Error("csv export failed", slog.Any("error", err))
	}
}

func (h *Handler) processImage(w http.ResponseWriter, r *http.Request) {
	data, name, err := readUpload(r, "image")
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.process(w, r, data, name, extraction.KindImage, extraction.Options{})
}

func (h *Handler) processStatement(w http.ResponseWriter, r *http.Request) {
	data, name, err := readUpload(r, "file")
	if err != nil {
		h.writeError(w, err)
		return
	}

	kind := extraction.KindDocument
	if isTabular(data) {
		kind = extraction.KindTabular
	}
	opts := extraction.Options{
		FallbackGeneric: r.URL.Query().Get("fallback_generic") == "true",
	}
	h.process(w, r, data, name, kind, opts)
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request, data []byte, name string, kind extraction.Kind, opts extraction.Options) {
	result, err := h.svc.Extract(r.Context(), data, kind, opts)
	if err != nil {
		h.metrics.ExtractionsTotal.WithLabelValues(kind.String(), "error").Inc()
		h.writeError(w, err)
		return
	}
	h.metrics.ExtractionsTotal.WithLabelValues(kind.String(), "ok").Inc()
	h.metrics.TransactionsExtracted.Add(float64(len(result.Transactions)))

	h.engine.Tag(result.Transactions)

	added, err := h.store.Add(result.Transactions)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body := map[string]any{
		"bank":               result.Bank,
		"transactions_count": added.Saved,
		"skipped_count":      added.Skipped,
		"transactions":       preview(result.Transactions, 5),
	}
	if h.archive != nil {
		info, err := h.archive.Save(r.Context(), name, kind.String(), http.DetectContentType(data), bytes.NewReader(data))
		if err != nil {
			h.logger.Warn("upload archive failed", slog.Any("error", err))
		} else {
			body["upload_id"] = info.ID
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) uploads(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeJSON(w, http.StatusOK, map[string]any{"uploads": []storage.FileInfo{}})
		return
	}
	files, err := h.archive.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploads": files})
}

func (h *Handler) clear(w http.ResponseWriter, _ *http.Request) {
	if err := h.store.Clear(); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "all transactions cleared"})
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid transaction id"))
		return
	}

	var body struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if !slices.Contains(h.engine.Categories(), body.Category) {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown category"))
		return
	}

	old, err := h.store.UpdateCategory(id, body.Category)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"old_category": old,
		"new_category": body.Category,
	})
}

// writeError maps the error taxonomy to status codes: bad uploads are 400s,
// upstream capability faults are 502s, unknown ledger IDs are 404s, and
// everything else is a 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		external *extraction.ExternalExtractionError
		missing  *tabular.MissingColumnsError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &missing),
		errors.Is(err, extraction.ErrEmptyInput),
		errors.Is(err, extraction.ErrUnsupportedFileType),
		errors.Is(err, extraction.ErrNoTransactionsFound),
		errors.Is(err, bank.ErrNotDetected),
		errors.Is(err, bank.ErrCSVNotDetected):
		status = http.StatusBadRequest
	case errors.As(err, &external):
		status = http.StatusBadGateway
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", slog.Any("error", err))
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func readUpload(r *http.Request, field string) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", extraction.ErrEmptyInput
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", extraction.ErrEmptyInput
	}
	return data, header.Filename, nil
}

// isTabular distinguishes CSV/xlsx uploads from PDFs by their leading
// bytes.
func isTabular(data []byte) bool {
	return !bytes.HasPrefix(data, []byte("%PDF"))
}

// preview truncates the response payload; full data lives in the ledger.
func preview(txs []transaction.Transaction, n int) []transaction.Transaction {
	if len(txs) > n {
		return txs[:n]
	}
	return txs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(detail string) map[string]string {
	return map[string]string{"detail": detail}
}

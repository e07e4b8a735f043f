// Package ledger persists accumulated transactions in a JSON file and
// answers summary queries over them.
//
// The file is the single source of truth; every mutation rewrites it
// whole. That is deliberate: the ledger is a personal-finance dataset of
// at most a few thousand records, and whole-file writes keep crash
// recovery trivial.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneyapp/moneyapp/internal/domain/transaction"
	"github.com/moneyapp/moneyapp/pkg/money"
)

var ErrNotFound = errors.New("transaction not found")

// Entry is one stored transaction plus bookkeeping fields.
type Entry struct {
	ID uuid.UUID `json:"id" csv:"id"`
	transaction.Transaction
	Timestamp time.Time `json:"timestamp" csv:"timestamp"`
}

// AddResult reports how an Add call split between new and duplicate
// records.
type AddResult struct {
	Saved   int
	Skipped int
}

// Summary aggregates the full ledger.
type Summary struct {
	TotalCredit        decimal.Decimal            `json:"total_credit"`
	TotalDebit         decimal.Decimal            `json:"total_debit"`
	TotalCreditDisplay string                     `json:"total_credit_display"`
	TotalDebitDisplay  string                     `json:"total_debit_display"`
	ByCategory         map[string]decimal.Decimal `json:"by_category"`
	Transactions       []Entry                    `json:"transactions"`
}

// Store guards the ledger file with a mutex; all operations serialize.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewStore opens the ledger at path, creating an empty file (and its
// directory) when none exists.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("create ledger file: %w", err)
		}
	}
	return &Store{path: path, logger: logger, now: time.Now}, nil
}

// Add appends the transactions that are not already in the ledger.
// Duplicates are detected by (date, amount, description, type), matching
// across uploads of overlapping statements.
func (s *Store) Add(txs []transaction.Transaction) (*AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(entries))
	for _, e := range entries {
		existing[e.DedupeKey()] = true
	}

	result := &AddResult{}
	now := s.now()
	for _, tx := range txs {
		if tx.Category == "" {
			tx.Category = transaction.DefaultCategory
		}
		key := tx.DedupeKey()
		if existing[key] {
			result.Skipped++
			continue
		}
		existing[key] = true
		entries = append(entries, Entry{ID: uuid.New(), Transaction: tx, Timestamp: now})
		result.Saved++
	}

	if result.Saved > 0 {
		if err := s.save(entries); err != nil {
			return nil, err
		}
	}
	s.logger.Info("ledger add", slog.Int("saved", result.Saved), slog.Int("skipped", result.Skipped))
	return result, nil
}

// List returns every entry, newest first.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Summarize totals credits and debits and groups debit spend by category.
func (s *Store) Summarize() (*Summary, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		ByCategory:   make(map[string]decimal.Decimal),
		Transactions: entries,
	}
	for _, e := range entries {
		if e.Type == transaction.TypeCredit {
			sum.TotalCredit = sum.TotalCredit.Add(e.Amount)
			continue
		}
		sum.TotalDebit = sum.TotalDebit.Add(e.Amount)
		sum.ByCategory[e.Category] = sum.ByCategory[e.Category].Add(e.Amount)
	}
	sum.TotalCreditDisplay = money.FormatINR(sum.TotalCredit)
	sum.TotalDebitDisplay = money.FormatINR(sum.TotalDebit)
	return sum, nil
}

// UpdateCategory relabels one entry and returns the previous label.
func (s *Store) UpdateCategory(id uuid.UUID, category string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", err
	}
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		old := entries[i].Category
		entries[i].Category = category
		entries[i].Timestamp = s.now()
		if err := s.save(entries); err != nil {
			return "", err
		}
		return old, nil
	}
	return "", ErrNotFound
}

// Clear empties the ledger.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(nil)
}

// ExportCSV writes the full ledger to w in CSV form.
func (s *Store) ExportCSV(w io.Writer) error {
	entries, err := s.List()
	if err != nil {
		return err
	}
	return gocsv.Marshal(entries, w)
}

// Snapshot copies the current ledger to a timestamped file under dir.
// The cron scheduler calls this daily.
func (s *Store) Snapshot(dir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read ledger: %w", err)
	}
	dest := filepath.Join(dir, fmt.Sprintf("ledger-%s.json", s.now().Format("20060102-150405")))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return dest, nil
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	sortEntries(entries)
	return entries, nil
}

// save rewrites the file through a temp-and-rename so a crash mid-write
// never truncates the ledger.
func (s *Store) save(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	sortEntries(entries)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Newest first, by transaction date then insertion time.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileStore keeps one JSON document per order under a directory, plus an
// index.json summarizing saved orders. The per-order file is the source of
// truth; the index exists so operators can scan orders without opening
// every document.
type FileStore struct {
	dir string
	mu  sync.Mutex // serializes index read-modify-write
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create orders dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) orderPath(orderID string) string {
	return filepath.Join(s.dir, orderID+".json")
}

func (s *FileStore) indexPath() string {
	return filepath.Join(s.dir, "index.json")
}

// Save writes the order document and patches the index entry.
func (s *FileStore) Save(ctx context.Context, record *Record) error {
	if record.OrderID == "" {
		return fmt.Errorf("order record has no id")
	}

	doc, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal order %s: %w", record.OrderID, err)
	}
	if err := os.WriteFile(s.orderPath(record.OrderID), doc, 0o644); err != nil {
		return fmt.Errorf("failed to write order %s: %w", record.OrderID, err)
	}

	return s.updateIndex(record)
}

// updateIndex patches this order's entry into index.json. Sanitized ids
// contain no gjson path metacharacters, so the id is usable as a key
// directly.
func (s *FileStore) updateIndex(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := os.ReadFile(s.indexPath())
	if err != nil {
		index = []byte("{}")
	}

	index, err = sjson.SetBytes(index, record.OrderID+".orderType", record.OrderType)
	if err != nil {
		return fmt.Errorf("failed to update order index: %w", err)
	}
	index, err = sjson.SetBytes(index, record.OrderID+".confirmedAt", record.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("failed to update order index: %w", err)
	}

	if err := os.WriteFile(s.indexPath(), index, 0o644); err != nil {
		return fmt.Errorf("failed to write order index: %w", err)
	}
	return nil
}

// Exists checks the index first and falls back to the order file itself,
// so a hand-deleted index does not orphan change requests.
func (s *FileStore) Exists(ctx context.Context, orderID string) (bool, error) {
	if index, err := os.ReadFile(s.indexPath()); err == nil {
		if gjson.GetBytes(index, orderID).Exists() {
			return true, nil
		}
	}
	_, err := os.Stat(s.orderPath(orderID))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Get reads the stored order document.
func (s *FileStore) Get(ctx context.Context, orderID string) (*Record, error) {
	data, err := os.ReadFile(s.orderPath(orderID))
	if err != nil {
		return nil, fmt.Errorf("failed to read order %s: %w", orderID, err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse order %s: %w", orderID, err)
	}
	return &record, nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }

// Ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

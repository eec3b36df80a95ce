package orders

import (
	"context"
	"fmt"

	"github.com/mrdaebak/voice-order-gateway/internal/config"
	"github.com/mrdaebak/voice-order-gateway/internal/summary"
)

// Order types recorded with each saved record.
const (
	TypeConfirm = "주문확정"
	TypeChange  = "주문변경"
)

// Record is the durable order document. A change request produces a new
// record under the same OrderID; records are never mutated in place.
type Record struct {
	OrderType   string                `json:"orderType"`
	OrderID     string                `json:"orderId"`
	ConfirmedAt string                `json:"confirmedAt"` // ISO-8601
	Summary     *summary.OrderSummary `json:"summary"`
}

// Store persists order records keyed by sanitized order id.
// Implementations are safe for concurrent use.
type Store interface {
	// Save writes (or overwrites) the record under record.OrderID.
	Save(ctx context.Context, record *Record) error

	// Exists reports whether an order with the given id has been saved.
	Exists(ctx context.Context, orderID string) (bool, error)

	// Get returns the stored record, or an error if the id is unknown.
	Get(ctx context.Context, orderID string) (*Record, error)

	// Close releases store resources.
	Close() error
}

// NewStore builds the store selected by configuration.
func NewStore(cfg config.OrdersConfig) (Store, error) {
	switch cfg.Store {
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "file", "":
		return NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown orders store type: %q", cfg.Store)
	}
}

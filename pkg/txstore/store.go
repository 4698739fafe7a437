// Package txstore persists the on-chain transaction mirror maintained by the
// event indexer and serves the read queries exposed to the HTTP layer.
package txstore

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by reads when no row matches.
var ErrNotFound = errors.New("transaction not found")

// Status is the lifecycle state of an indexed transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Type identifies the event species a record was derived from.
type Type string

const (
	TypeDailyIssuance      Type = "daily_issuance"
	TypeRestaurantTransfer Type = "restaurant_transfer"
	TypeExpiration         Type = "expiration"
)

// Metadata keys used by the indexer's enrichment step.
const (
	MetaOriginCountry = "origin_country"
	MetaRestaurantID  = "restaurant_id"
	MetaExpiresAt     = "expires_at"
)

// Metadata is the opaque structured payload attached to a record.
type Metadata map[string]interface{}

// TransactionRecord is the canonical record of one on-chain event, uniquely
// keyed by transaction hash. Amount, gas price and fee are decimal text so
// precision beyond native floats survives the round trip.
type TransactionRecord struct {
	Hash        string
	BlockNumber int64
	FromAddress string
	ToAddress   string
	Amount      string
	GasUsed     int64
	GasPrice    string
	Fee         string
	Status      Status
	Type        Type
	Metadata    Metadata
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

// DailyStat is one row of the per-day aggregate breakdown.
type DailyStat struct {
	Type        Type            `bun:"type"`
	Count       int64           `bun:"count"`
	TotalAmount decimal.Decimal `bun:"total_amount"`
	AverageFee  decimal.Decimal `bun:"average_fee"`
}

// OriginEarning is one row of a restaurant's earnings grouped by the origin
// country of the paying tourists.
type OriginEarning struct {
	OriginCountry string          `bun:"origin_country"`
	Transfers     int64           `bun:"transfers"`
	TotalAmount   decimal.Decimal `bun:"total_amount"`
}

// Store is the persistence contract consumed by the indexer and the read API.
type Store interface {
	// Upsert inserts the record, or on hash conflict updates only status and
	// confirmed_at. All other columns keep their first-observed values.
	Upsert(ctx context.Context, rec *TransactionRecord) error

	GetByHash(ctx context.Context, hash string) (*TransactionRecord, error)
	ListByAddress(ctx context.Context, address string, limit, offset int) ([]*TransactionRecord, error)
	ListByType(ctx context.Context, txType Type, limit, offset int) ([]*TransactionRecord, error)
	DailyStats(ctx context.Context, day time.Time) ([]*DailyStat, error)
	RestaurantEarningsByOrigin(ctx context.Context, restaurant string) ([]*OriginEarning, error)
}

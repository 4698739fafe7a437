package txstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates the postgres implementation of the transaction store.
func NewStore(db *bun.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Upsert(ctx context.Context, rec *TransactionRecord) error {
	dao := toDao(rec)

	// Overlapping delivery paths (live subscription and backfill) may race on
	// the same hash. The conflict clause keeps exactly one row and refreshes
	// only the lifecycle columns.
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (transaction_hash) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("confirmed_at = EXCLUDED.confirmed_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction %s: %w", dao.TransactionHash, err)
	}
	return nil
}

func (s *pgStore) GetByHash(ctx context.Context, hash string) (*TransactionRecord, error) {
	dao := new(TransactionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("transaction_hash = ?", strings.ToLower(hash)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return toRecord(dao), nil
}

func (s *pgStore) ListByAddress(ctx context.Context, address string, limit, offset int) ([]*TransactionRecord, error) {
	addr := strings.ToLower(address)

	var daos []TransactionDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("from_address = ? OR to_address = ?", addr, addr).
		Order("block_number DESC", "created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by address: %w", err)
	}
	return toRecords(daos), nil
}

func (s *pgStore) ListByType(ctx context.Context, txType Type, limit, offset int) ([]*TransactionRecord, error) {
	var daos []TransactionDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("transaction_type = ?", string(txType)).
		Order("block_number DESC", "created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by type: %w", err)
	}
	return toRecords(daos), nil
}

func (s *pgStore) DailyStats(ctx context.Context, day time.Time) ([]*DailyStat, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var stats []*DailyStat
	err := s.db.NewSelect().
		Model((*TransactionDao)(nil)).
		ColumnExpr("transaction_type AS type").
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("COALESCE(SUM(amount), 0) AS total_amount").
		ColumnExpr("COALESCE(AVG(transaction_fee), 0) AS average_fee").
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		GroupExpr("transaction_type").
		OrderExpr("transaction_type").
		Scan(ctx, &stats)
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily stats: %w", err)
	}
	return stats, nil
}

func (s *pgStore) RestaurantEarningsByOrigin(ctx context.Context, restaurant string) ([]*OriginEarning, error) {
	var earnings []*OriginEarning
	err := s.db.NewSelect().
		Model((*TransactionDao)(nil)).
		ColumnExpr("COALESCE(metadata->>?, 'unknown') AS origin_country", MetaOriginCountry).
		ColumnExpr("COUNT(*) AS transfers").
		ColumnExpr("COALESCE(SUM(amount), 0) AS total_amount").
		Where("to_address = ?", strings.ToLower(restaurant)).
		Where("transaction_type = ?", string(TypeRestaurantTransfer)).
		GroupExpr("metadata->>?", MetaOriginCountry).
		OrderExpr("total_amount DESC").
		Scan(ctx, &earnings)
	if err != nil {
		return nil, fmt.Errorf("failed to compute restaurant earnings: %w", err)
	}
	return earnings, nil
}

func toRecords(daos []TransactionDao) []*TransactionRecord {
	records := make([]*TransactionRecord, len(daos))
	for i := range daos {
		records[i] = toRecord(&daos[i])
	}
	return records
}

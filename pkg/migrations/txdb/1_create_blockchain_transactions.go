package txdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			log.Println("creating blockchain_transactions table...")
			_, err := db.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS blockchain_transactions (
					transaction_hash VARCHAR(66) PRIMARY KEY,
					block_number     BIGINT NOT NULL,
					from_address     VARCHAR(42) NOT NULL,
					to_address       VARCHAR(42) NOT NULL,
					amount           NUMERIC NOT NULL,
					gas_used         BIGINT NOT NULL,
					gas_price        NUMERIC NOT NULL,
					transaction_fee  NUMERIC NOT NULL,
					status           VARCHAR(16) NOT NULL DEFAULT 'pending',
					transaction_type VARCHAR(32) NOT NULL,
					metadata         JSONB,
					created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
					confirmed_at     TIMESTAMPTZ
				)
			`)
			if err != nil {
				return err
			}

			for _, stmt := range []string{
				`CREATE INDEX IF NOT EXISTS idx_blockchain_transactions_from_address ON blockchain_transactions (from_address)`,
				`CREATE INDEX IF NOT EXISTS idx_blockchain_transactions_to_address ON blockchain_transactions (to_address)`,
				`CREATE INDEX IF NOT EXISTS idx_blockchain_transactions_type ON blockchain_transactions (transaction_type)`,
				`CREATE INDEX IF NOT EXISTS idx_blockchain_transactions_block_number ON blockchain_transactions (block_number)`,
			} {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			log.Println("dropping blockchain_transactions table...")
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS blockchain_transactions`)
			return err
		},
	)
}

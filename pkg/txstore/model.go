package txstore

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// TransactionDao maps directly to the blockchain_transactions table.
type TransactionDao struct {
	bun.BaseModel `bun:"table:blockchain_transactions"`

	TransactionHash string     `bun:"transaction_hash,pk"`
	BlockNumber     int64      `bun:"block_number,notnull"`
	FromAddress     string     `bun:"from_address,notnull"`
	ToAddress       string     `bun:"to_address,notnull"`
	Amount          string     `bun:"amount,notnull"`
	GasUsed         int64      `bun:"gas_used,notnull"`
	GasPrice        string     `bun:"gas_price,notnull"`
	TransactionFee  string     `bun:"transaction_fee,notnull"`
	Status          string     `bun:"status,notnull"`
	TransactionType string     `bun:"transaction_type,notnull"`
	Metadata        Metadata   `bun:"metadata,type:jsonb"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:now()"`
	ConfirmedAt     *time.Time `bun:"confirmed_at"`
}

// Addresses and hashes are stored lower-cased so lookups are cheap equality
// matches regardless of checksum casing at the call site.
func toDao(rec *TransactionRecord) *TransactionDao {
	return &TransactionDao{
		TransactionHash: strings.ToLower(rec.Hash),
		BlockNumber:     rec.BlockNumber,
		FromAddress:     strings.ToLower(rec.FromAddress),
		ToAddress:       strings.ToLower(rec.ToAddress),
		Amount:          rec.Amount,
		GasUsed:         rec.GasUsed,
		GasPrice:        rec.GasPrice,
		TransactionFee:  rec.Fee,
		Status:          string(rec.Status),
		TransactionType: string(rec.Type),
		Metadata:        rec.Metadata,
		CreatedAt:       rec.CreatedAt,
		ConfirmedAt:     rec.ConfirmedAt,
	}
}

func toRecord(dao *TransactionDao) *TransactionRecord {
	return &TransactionRecord{
		Hash:        dao.TransactionHash,
		BlockNumber: dao.BlockNumber,
		FromAddress: dao.FromAddress,
		ToAddress:   dao.ToAddress,
		Amount:      dao.Amount,
		GasUsed:     dao.GasUsed,
		GasPrice:    dao.GasPrice,
		Fee:         dao.TransactionFee,
		Status:      Status(dao.Status),
		Type:        Type(dao.TransactionType),
		Metadata:    dao.Metadata,
		CreatedAt:   dao.CreatedAt,
		ConfirmedAt: dao.ConfirmedAt,
	}
}

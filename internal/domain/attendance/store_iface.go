package attendance

import "context"

// TxStore is what the batch engine needs from persistence.
type TxStore interface {
	// UpsertBatchTx runs every upsert pipelined inside one transaction.
	// A row-level failure rolls the transaction back and returns an error
	// wrapping ErrRowFailure; any other error is transaction-level.
	UpsertBatchTx(ctx context.Context, records []Record) error
	// Upsert writes a single record outside any surrounding transaction.
	Upsert(ctx context.Context, record Record) error
}

type StoreAPI interface {
	TxStore
	List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error)
	CountByBatch(ctx context.Context, batchID string) (int, error)
}

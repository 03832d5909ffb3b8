package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxManagerInterface реализуется backend.DataAPI.
type TxManagerInterface interface {
	RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

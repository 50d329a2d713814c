package service

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// txRunner executes fn inside a single transaction: commit when fn
// returns nil, roll back otherwise.
type txRunner func(ctx context.Context, fn func(tx *sqlx.Tx) error) error

func sqlxTxRunner(db *sqlx.DB) txRunner {
	return func(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	}
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// withTransaction выполняет fn внутри транзакции. Rollback после Commit
// безопасен, поэтому его можно держать в defer без флагов.
func withTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

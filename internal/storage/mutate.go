package storage

import (
	"context"
	"fmt"
)

// updateOwned applies set to a live row owned by userID. It returns
// ErrNotFound when no such row exists.
func (db *DB) updateOwned(ctx context.Context, table string, id, userID int64, set assignments) error {
	set.set("updated_at", db.timestamp())
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND user_id = ? AND is_deleted = FALSE", table, set.String())
	args := append(set.args, id, userID)

	result, err := db.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// softDelete flags a row owned by userID as deleted.
func (db *DB) softDelete(ctx context.Context, table string, id, userID int64) error {
	var set assignments
	set.set("is_deleted", true)
	return db.updateOwned(ctx, table, id, userID, set)
}

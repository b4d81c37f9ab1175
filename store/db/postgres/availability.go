package postgres

import (
	"context"
	"strings"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/store"
)

func (d *DB) ListAvailabilitySlots(ctx context.Context, find *store.FindAvailabilitySlot) ([]*store.AvailabilitySlot, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Weekday; v != nil {
		where, args = append(where, "weekday = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, user_id, weekday, start_unit, end_unit
		FROM availability_slot
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY weekday ASC, start_unit ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to query availability slots", err)
	}
	defer rows.Close()

	list := make([]*store.AvailabilitySlot, 0)
	for rows.Next() {
		var slot store.AvailabilitySlot
		if err := rows.Scan(
			&slot.ID,
			&slot.UserID,
			&slot.Weekday,
			&slot.StartUnit,
			&slot.EndUnit,
		); err != nil {
			return nil, apperrors.StoreUnavailable("failed to scan availability slot", err)
		}
		list = append(list, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("failed to iterate availability slots", err)
	}

	return list, nil
}

func (d *DB) ReplaceAvailabilitySlots(ctx context.Context, userID int32, slots []*store.AvailabilitySlot) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StoreUnavailable("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM availability_slot WHERE user_id = `+placeholder(1), userID,
	); err != nil {
		return apperrors.StoreUnavailable("failed to delete availability slots", err)
	}

	for _, slot := range slots {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO availability_slot (user_id, weekday, start_unit, end_unit)
			VALUES (`+placeholders(4)+`)`,
			userID, slot.Weekday, slot.StartUnit, slot.EndUnit,
		); err != nil {
			return apperrors.StoreUnavailable("failed to insert availability slot", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.StoreUnavailable("failed to commit availability replace", err)
	}
	return nil
}

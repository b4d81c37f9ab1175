package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/store"
)

func (d *DB) CreateWorkoutSession(ctx context.Context, create *store.WorkoutSession) (*store.WorkoutSession, error) {
	fields := []string{
		"uid", "participant_a", "participant_b", "date",
		"start_unit", "end_unit", "status",
	}
	placeholderValues := []any{
		create.UID, create.ParticipantA, create.ParticipantB, create.Date,
		create.StartUnit, create.EndUnit, create.Status,
	}

	stmt := `INSERT INTO workout_session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, apperrors.StoreUnavailable("failed to create workout session", err)
	}

	return create, nil
}

func (d *DB) ListWorkoutSessions(ctx context.Context, find *store.FindWorkoutSession) ([]*store.WorkoutSession, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ParticipantID; v != nil {
		where = append(where, fmt.Sprintf("(participant_a = %s OR participant_b = %s)",
			placeholder(len(args)+1), placeholder(len(args)+2)))
		args = append(args, *v, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, uid, participant_a, participant_b, date,
			start_unit, end_unit, status, created_ts, updated_ts
		FROM workout_session
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY date ASC, start_unit ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to query workout sessions", err)
	}
	defer rows.Close()

	list := make([]*store.WorkoutSession, 0)
	for rows.Next() {
		var session store.WorkoutSession
		if err := rows.Scan(
			&session.ID,
			&session.UID,
			&session.ParticipantA,
			&session.ParticipantB,
			&session.Date,
			&session.StartUnit,
			&session.EndUnit,
			&session.Status,
			&session.CreatedTs,
			&session.UpdatedTs,
		); err != nil {
			return nil, apperrors.StoreUnavailable("failed to scan workout session", err)
		}
		list = append(list, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("failed to iterate workout sessions", err)
	}

	return list, nil
}

// UpdateWorkoutSession applies a CAS status change, mirroring the proposal
// transition contract so racing cancel/complete calls cannot both win.
func (d *DB) UpdateWorkoutSession(ctx context.Context, update *store.UpdateWorkoutSession) (*store.WorkoutSession, error) {
	stmt := `UPDATE workout_session
		SET status = ` + placeholder(1) + `, updated_ts = extract(epoch from now())::bigint
		WHERE uid = ` + placeholder(2) + ` AND status = ` + placeholder(3) + `
		RETURNING id, uid, participant_a, participant_b, date,
			start_unit, end_unit, status, created_ts, updated_ts`

	var session store.WorkoutSession
	err := d.db.QueryRowContext(ctx, stmt, update.NewStatus, update.UID, update.ExpectedStatus).Scan(
		&session.ID,
		&session.UID,
		&session.ParticipantA,
		&session.ParticipantB,
		&session.Date,
		&session.StartUnit,
		&session.EndUnit,
		&session.Status,
		&session.CreatedTs,
		&session.UpdatedTs,
	)
	if err == nil {
		return &session, nil
	}
	if err != sql.ErrNoRows {
		return nil, apperrors.StoreUnavailable("failed to update workout session", err)
	}

	var current store.SessionStatus
	if err := d.db.QueryRowContext(ctx,
		`SELECT status FROM workout_session WHERE uid = `+placeholder(1), update.UID,
	).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound(fmt.Sprintf("workout session %s not found", update.UID))
		}
		return nil, apperrors.StoreUnavailable("failed to read workout session status", err)
	}
	return nil, apperrors.Conflict(fmt.Sprintf(
		"workout session %s is %s, expected %s", update.UID, current, update.ExpectedStatus))
}

package sqlite

import (
	"context"
	"database/sql"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/store"
)

func (d *DB) UpsertNegotiationContext(ctx context.Context, upsert *store.NegotiationContext) (*store.NegotiationContext, error) {
	stmt := `INSERT INTO negotiation_context (user_id, active_proposal_uid, updated_ts)
		VALUES (` + placeholders(2) + `, strftime('%s', 'now'))
		ON CONFLICT (user_id) DO UPDATE SET
			active_proposal_uid = excluded.active_proposal_uid,
			updated_ts = strftime('%s', 'now')
		RETURNING user_id, active_proposal_uid, updated_ts`

	var nc store.NegotiationContext
	if err := d.db.QueryRowContext(ctx, stmt, upsert.UserID, upsert.ActiveProposalUID).Scan(
		&nc.UserID,
		&nc.ActiveProposalUID,
		&nc.UpdatedTs,
	); err != nil {
		return nil, apperrors.StoreUnavailable("failed to upsert negotiation context", err)
	}
	return &nc, nil
}

func (d *DB) GetNegotiationContext(ctx context.Context, userID int32) (*store.NegotiationContext, error) {
	var nc store.NegotiationContext
	err := d.db.QueryRowContext(ctx,
		`SELECT user_id, active_proposal_uid, updated_ts
		FROM negotiation_context WHERE user_id = `+placeholder(1), userID,
	).Scan(&nc.UserID, &nc.ActiveProposalUID, &nc.UpdatedTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to query negotiation context", err)
	}
	return &nc, nil
}

func (d *DB) DeleteNegotiationContext(ctx context.Context, userID int32) error {
	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM negotiation_context WHERE user_id = `+placeholder(1), userID,
	); err != nil {
		return apperrors.StoreUnavailable("failed to delete negotiation context", err)
	}
	return nil
}

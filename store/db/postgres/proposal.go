package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "github.com/hrygo/spotmatch/internal/errors"
	"github.com/hrygo/spotmatch/store"
)

func (d *DB) CreateProposal(ctx context.Context, create *store.Proposal) (*store.Proposal, error) {
	fields := []string{
		"uid", "proposer_id", "recipient_id", "date",
		"start_unit", "end_unit", "status", "message",
		"parent_proposal_uid", "session_uid", "expires_ts",
	}
	placeholderValues := []any{
		create.UID, create.ProposerID, create.RecipientID, create.Date,
		create.StartUnit, create.EndUnit, create.Status, create.Message,
		create.ParentProposalUID, create.SessionUID, create.ExpiresTs,
	}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}

	stmt := `INSERT INTO proposal (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, apperrors.StoreUnavailable("failed to create proposal", err)
	}

	return create, nil
}

func (d *DB) ListProposals(ctx context.Context, find *store.FindProposal) ([]*store.Proposal, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "proposal.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "proposal.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ProposerID; v != nil {
		where, args = append(where, "proposal.proposer_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RecipientID; v != nil {
		where, args = append(where, "proposal.recipient_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(find.Statuses) > 0 {
		list := []string{}
		for _, status := range find.Statuses {
			list = append(list, placeholder(len(args)+1))
			args = append(args, status)
		}
		where = append(where, "proposal.status IN ("+strings.Join(list, ", ")+")")
	}
	if v := find.ExpiresBefore; v != nil {
		where, args = append(where, "proposal.expires_ts < "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, proposer_id, recipient_id, date,
			start_unit, end_unit, status, message,
			parent_proposal_uid, session_uid, created_ts, expires_ts
		FROM proposal
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY proposal.created_ts DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to query proposals", err)
	}
	defer rows.Close()

	list := make([]*store.Proposal, 0)
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, proposal)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable("failed to iterate proposals", err)
	}

	return list, nil
}

// TransitionProposal applies the compare-and-swap transition. The WHERE
// clause on (uid, status) is what makes racing responders safe: only the
// first transition out of an active status can match.
func (d *DB) TransitionProposal(ctx context.Context, transition *store.TransitionProposal) (*store.Proposal, error) {
	set, args := []string{}, []any{}

	set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, transition.NewStatus)
	if v := transition.SessionUID; v != nil {
		set, args = append(set, "session_uid = "+placeholder(len(args)+1)), append(args, *v)
	}

	args = append(args, transition.UID, transition.ExpectedStatus)

	stmt := `UPDATE proposal SET ` + strings.Join(set, ", ") + `
		WHERE uid = ` + placeholder(len(args)-1) + ` AND status = ` + placeholder(len(args)) + `
		RETURNING id, uid, proposer_id, recipient_id, date,
			start_unit, end_unit, status, message,
			parent_proposal_uid, session_uid, created_ts, expires_ts`

	row := d.db.QueryRowContext(ctx, stmt, args...)
	proposal, err := scanProposalRow(row)
	if err == nil {
		return proposal, nil
	}
	if err != sql.ErrNoRows {
		return nil, apperrors.StoreUnavailable("failed to transition proposal", err)
	}

	// No row matched: either the proposal does not exist or its status moved.
	var current store.ProposalStatus
	if err := d.db.QueryRowContext(ctx,
		`SELECT status FROM proposal WHERE uid = `+placeholder(1), transition.UID,
	).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound(fmt.Sprintf("proposal %s not found", transition.UID))
		}
		return nil, apperrors.StoreUnavailable("failed to read proposal status", err)
	}
	return nil, apperrors.Conflict(fmt.Sprintf(
		"proposal %s is %s, expected %s", transition.UID, current, transition.ExpectedStatus))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProposal(rows *sql.Rows) (*store.Proposal, error) {
	proposal, err := scanProposalFields(rows)
	if err != nil {
		return nil, apperrors.StoreUnavailable("failed to scan proposal", err)
	}
	return proposal, nil
}

func scanProposalRow(row *sql.Row) (*store.Proposal, error) {
	return scanProposalFields(row)
}

func scanProposalFields(s rowScanner) (*store.Proposal, error) {
	var proposal store.Proposal
	var parentUID, sessionUID sql.NullString

	if err := s.Scan(
		&proposal.ID,
		&proposal.UID,
		&proposal.ProposerID,
		&proposal.RecipientID,
		&proposal.Date,
		&proposal.StartUnit,
		&proposal.EndUnit,
		&proposal.Status,
		&proposal.Message,
		&parentUID,
		&sessionUID,
		&proposal.CreatedTs,
		&proposal.ExpiresTs,
	); err != nil {
		return nil, err
	}

	if parentUID.Valid {
		proposal.ParentProposalUID = &parentUID.String
	}
	if sessionUID.Valid {
		proposal.SessionUID = &sessionUID.String
	}
	return &proposal, nil
}

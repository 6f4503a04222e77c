package voicerequests

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gavalink/pkg/utils"
)

// PostgresRepo persists voice agent requests.
//
// NOTE: This repository assumes the following table exists:
// - voice_agent_requests
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Insert(ctx context.Context, v VoiceRequest) error {
	const q = `
INSERT INTO voice_agent_requests (
  id, user_id, request_type, description, status, priority, officer_notes, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err := r.db.ExecContext(ctx, q,
		v.ID,
		v.UserID,
		v.RequestType,
		v.Description,
		v.Status,
		v.Priority,
		v.OfficerNotes,
		v.CreatedAt,
		v.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (VoiceRequest, error) {
	const q = `
SELECT id, user_id, request_type, description, status, priority, officer_notes, created_at, updated_at
FROM voice_agent_requests
WHERE id = $1
`
	var v VoiceRequest
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&v.ID,
		&v.UserID,
		&v.RequestType,
		&v.Description,
		&v.Status,
		&v.Priority,
		&v.OfficerNotes,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return VoiceRequest{}, ErrNotFound
		}
		return VoiceRequest{}, err
	}
	return v, nil
}

func (r *PostgresRepo) List(ctx context.Context, status Status) ([]VoiceRequest, error) {
	const q = `
SELECT id, user_id, request_type, description, status, priority, officer_notes, created_at, updated_at
FROM voice_agent_requests
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VoiceRequest
	for rows.Next() {
		var v VoiceRequest
		if err := rows.Scan(
			&v.ID,
			&v.UserID,
			&v.RequestType,
			&v.Description,
			&v.Status,
			&v.Priority,
			&v.OfficerNotes,
			&v.CreatedAt,
			&v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateDecision records an officer decision. The row is locked and its
// status re-checked inside the transaction so two racing officers cannot
// both decide the same request.
func (r *PostgresRepo) UpdateDecision(ctx context.Context, id string, status Status, officerNotes string, updatedAt time.Time) (VoiceRequest, error) {
	var v VoiceRequest
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const lockQ = `
SELECT status
FROM voice_agent_requests
WHERE id = $1
FOR UPDATE
`
		var current Status
		if err := tx.QueryRowContext(ctx, lockQ, id).Scan(&current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if current != StatusPending {
			return ErrAlreadyDecided
		}

		const q = `
UPDATE voice_agent_requests
SET status = $2, officer_notes = $3, updated_at = $4
WHERE id = $1
RETURNING id, user_id, request_type, description, status, priority, officer_notes, created_at, updated_at
`
		return tx.QueryRowContext(ctx, q, id, status, officerNotes, updatedAt).Scan(
			&v.ID,
			&v.UserID,
			&v.RequestType,
			&v.Description,
			&v.Status,
			&v.Priority,
			&v.OfficerNotes,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
	})
	if err != nil {
		return VoiceRequest{}, err
	}
	return v, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/travel-booking-gateway/internal/model"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS booking_submissions (
	id           CHAR(36)      NOT NULL PRIMARY KEY,
	user_id      VARCHAR(64)   NOT NULL DEFAULT '',
	booking_type VARCHAR(16)   NOT NULL,
	item_id      VARCHAR(64)   NOT NULL,
	units        INT           NOT NULL,
	total_price  DECIMAL(12,4) NOT NULL,
	status       VARCHAR(32)   NOT NULL,
	booking_ids  TEXT          NOT NULL,
	error        TEXT          NOT NULL,
	created_at   DATETIME      NOT NULL,
	updated_at   DATETIME      NOT NULL,
	KEY idx_booking_submissions_status (status, updated_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// LedgerRepo stores booking submissions in MySQL.
type LedgerRepo struct{ DB *sqlx.DB }

func NewLedgerRepo(db *sqlx.DB) *LedgerRepo { return &LedgerRepo{DB: db} }

// EnsureSchema creates the booking_submissions table when missing.
func (r *LedgerRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, ledgerSchema)
	return err
}

// Begin inserts a new submission row.
func (r *LedgerRepo) Begin(ctx context.Context, s model.Submission) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO booking_submissions
			(id, user_id, booking_type, item_id, units, total_price, status, booking_ids, error, created_at, updated_at)
		VALUES
			(:id, :user_id, :booking_type, :item_id, :units, :total_price, :status, :booking_ids, :error, :created_at, :updated_at)`,
		s)
	if err != nil {
		return fmt.Errorf("insert submission %s: %w", s.ID, err)
	}
	return nil
}

// Finish moves a submission to its terminal status.
func (r *LedgerRepo) Finish(ctx context.Context, id string, status model.SubmissionStatus, bookingIDs []string, errMsg string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE booking_submissions SET status=?, booking_ids=?, error=?, updated_at=? WHERE id=?",
		status, JoinIDs(bookingIDs), errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update submission %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns one submission.
func (r *LedgerRepo) Get(ctx context.Context, id string) (model.Submission, error) {
	var s model.Submission
	err := r.DB.GetContext(ctx, &s, "SELECT * FROM booking_submissions WHERE id=? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrNotFound
	}
	return s, err
}

// List returns the newest submissions first, optionally only those with the
// given status. A limit outside 1..200 falls back to 50.
func (r *LedgerRepo) List(ctx context.Context, status model.SubmissionStatus, limit int) ([]model.Submission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out := []model.Submission{}
	var err error
	if status == "" {
		err = r.DB.SelectContext(ctx, &out,
			"SELECT * FROM booking_submissions ORDER BY created_at DESC LIMIT ?", limit)
	} else {
		err = r.DB.SelectContext(ctx, &out,
			"SELECT * FROM booking_submissions WHERE status=? ORDER BY created_at DESC LIMIT ?", status, limit)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// JoinIDs and SplitIDs convert between the booking_ids column and a slice.
func JoinIDs(ids []string) string { return strings.Join(ids, ",") }

func SplitIDs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

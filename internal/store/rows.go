package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/report"
)

const sessionRowColumns = `
	id, day, date, time_start, time_end, total_hours, branches,
	orders_input, disputed_orders, emails_followed_up, updated_orders,
	videos_uploaded, platform_used, remarks
`

func (s *Store) ListSessionRows(ctx context.Context, userID uuid.UUID, limit int) ([]report.SessionRow, error) {
	if limit <= 0 {
		limit = 2000
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT `+sessionRowColumns+`
		FROM session_rows
		WHERE user_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.SessionRow
	for rows.Next() {
		var r report.SessionRow
		if err := rows.Scan(
			&r.ID, &r.Day, &r.Date, &r.TimeStart, &r.TimeEnd, &r.TotalHours,
			&r.Branches, &r.OrdersInput, &r.DisputedOrders, &r.EmailsFollowedUp,
			&r.UpdatedOrders, &r.VideosUploaded, &r.PlatformUsed, &r.Remarks,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveSessionRows inserts rows that carry no id and updates the rest,
// scoped to the owning user. It reports how many rows were written.
func (s *Store) SaveSessionRows(ctx context.Context, userID uuid.UUID, rowsIn []report.SessionRow) (int, error) {
	if len(rowsIn) == 0 {
		return 0, nil
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	saved := 0
	batch := &pgx.Batch{}
	for _, r := range rowsIn {
		if r.HasID() {
			continue
		}
		batch.Queue(`
			INSERT INTO session_rows (
				user_id, day, date, time_start, time_end, total_hours, branches,
				orders_input, disputed_orders, emails_followed_up, updated_orders,
				videos_uploaded, platform_used, remarks
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, userID, r.Day, r.Date, r.TimeStart, r.TimeEnd, r.TotalHours, r.Branches,
			r.OrdersInput, r.DisputedOrders, r.EmailsFollowedUp, r.UpdatedOrders,
			r.VideosUploaded, r.PlatformUsed, r.Remarks)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return 0, err
			}
		}
		if err := br.Close(); err != nil {
			return 0, err
		}
		saved += batch.Len()
	}

	for _, r := range rowsIn {
		if !r.HasID() {
			continue
		}
		tag, err := tx.Exec(ctx, `
			UPDATE session_rows SET
				day = $3, date = $4, time_start = $5, time_end = $6,
				total_hours = $7, branches = $8, orders_input = $9,
				disputed_orders = $10, emails_followed_up = $11,
				updated_orders = $12, videos_uploaded = $13,
				platform_used = $14, remarks = $15, updated_at = now()
			WHERE id = $1 AND user_id = $2
		`, r.ID, userID, r.Day, r.Date, r.TimeStart, r.TimeEnd, r.TotalHours,
			r.Branches, r.OrdersInput, r.DisputedOrders, r.EmailsFollowedUp,
			r.UpdatedOrders, r.VideosUploaded, r.PlatformUsed, r.Remarks)
		if err != nil {
			return 0, err
		}
		saved += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return saved, nil
}

func (s *Store) DeleteSessionRow(ctx context.Context, userID uuid.UUID, rowID int64) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		DELETE FROM session_rows WHERE id = $1 AND user_id = $2
	`, rowID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) DeleteSessionRows(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM session_rows WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

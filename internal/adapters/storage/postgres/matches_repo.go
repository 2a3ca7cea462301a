package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pet-lost-found/internal/domain/matching"
)

type MatchesRepo struct {
	db *sql.DB
}

func NewMatchesRepo(db *sql.DB) *MatchesRepo {
	return &MatchesRepo{db: db}
}

const matchColumns = `
	id, lost_report_id, found_report_id,
	score, reasons, status,
	created_at, updated_at, resolved_at
`

// Upsert usa el unique index (lost_report_id, found_report_id) como guard de
// serialización por par. El UPDATE solo toca filas pending: un match settled
// no se re-puntúa.
func (r *MatchesRepo) Upsert(ctx context.Context, m matching.Match) (matching.Match, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO matches (
			id, lost_report_id, found_report_id,
			score, reasons, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (lost_report_id, found_report_id) DO UPDATE
		SET score = EXCLUDED.score,
		    reasons = EXCLUDED.reasons,
		    updated_at = EXCLUDED.updated_at
		WHERE matches.status = 'pending'
		RETURNING `+matchColumns+`, (xmax = 0) AS inserted
	`,
		m.ID,
		m.LostReportID,
		m.FoundReportID,
		m.Score,
		m.ReasonsText(),
		m.Status,
		m.CreatedAt,
		m.UpdatedAt,
	)

	var saved matching.Match
	var reasons string
	var resolvedAt sql.NullTime
	var inserted bool
	err := row.Scan(
		&saved.ID,
		&saved.LostReportID,
		&saved.FoundReportID,
		&saved.Score,
		&reasons,
		&saved.Status,
		&saved.CreatedAt,
		&saved.UpdatedAt,
		&resolvedAt,
		&inserted,
	)
	if err == sql.ErrNoRows {
		// el par existe pero está settled: el DO UPDATE no aplicó.
		// Devolvemos la fila tal cual está.
		existing, gerr := r.getByPair(ctx, m.LostReportID, m.FoundReportID)
		if gerr != nil {
			return matching.Match{}, false, gerr
		}
		return existing, false, nil
	}
	if err != nil {
		return matching.Match{}, false, err
	}

	saved.Reasons = matching.SplitReasons(reasons)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		saved.ResolvedAt = &t
	}
	return saved, inserted, nil
}

func (r *MatchesRepo) GetByID(ctx context.Context, id string) (matching.Match, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return matching.Match{}, matching.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE id = $1
	`, id)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return matching.Match{}, matching.ErrNotFound
	}
	return m, err
}

func (r *MatchesRepo) getByPair(ctx context.Context, lostReportID, foundReportID string) (matching.Match, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE lost_report_id = $1 AND found_report_id = $2
	`, lostReportID, foundReportID)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return matching.Match{}, matching.ErrNotFound
	}
	return m, err
}

func (r *MatchesRepo) ListByUser(ctx context.Context, userID string) ([]matching.Match, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+matchColumnsPrefixed("m")+`
		FROM matches m
		JOIN lost_reports l ON l.id = m.lost_report_id
		JOIN found_reports f ON f.id = m.found_report_id
		WHERE l.owner_user_id = $1 OR f.reporter_user_id = $1
		ORDER BY m.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MatchesRepo) ExistsForPair(ctx context.Context, lostReportID, foundReportID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE lost_report_id = $1 AND found_report_id = $2
		)
	`, lostReportID, foundReportID).Scan(&exists)
	return exists, err
}

// Confirm corre todo en una transacción: el UPDATE condicionado a
// status='pending' es el guard (0 filas => otro request ganó la carrera).
func (r *MatchesRepo) Confirm(ctx context.Context, matchID string, now time.Time) (matching.ConfirmOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return matching.ConfirmOutcome{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE matches
		SET status = 'confirmed', updated_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+matchColumns+`
	`, matchID, now)

	confirmed, err := scanMatch(row)
	if err == sql.ErrNoRows {
		if _, gerr := r.GetByID(ctx, matchID); gerr != nil {
			return matching.ConfirmOutcome{}, gerr
		}
		return matching.ConfirmOutcome{}, matching.ErrStateChanged
	}
	if err != nil {
		return matching.ConfirmOutcome{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE lost_reports
		SET status = 'matched', updated_at = $2
		WHERE id = $1
	`, confirmed.LostReportID, now); err != nil {
		return matching.ConfirmOutcome{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE found_reports
		SET status = 'matched', updated_at = $2
		WHERE id = $1
	`, confirmed.FoundReportID, now); err != nil {
		return matching.ConfirmOutcome{}, err
	}

	// Exclusividad: auto-reject de los pending que tocan cualquiera de los
	// dos reportes.
	rows, err := tx.QueryContext(ctx, `
		UPDATE matches
		SET status = 'rejected', updated_at = $4
		WHERE id <> $1
		  AND status = 'pending'
		  AND (lost_report_id = $2 OR found_report_id = $3)
		RETURNING `+matchColumns+`
	`, confirmed.ID, confirmed.LostReportID, confirmed.FoundReportID, now)
	if err != nil {
		return matching.ConfirmOutcome{}, err
	}

	autoRejected := make([]matching.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			rows.Close()
			return matching.ConfirmOutcome{}, err
		}
		autoRejected = append(autoRejected, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return matching.ConfirmOutcome{}, err
	}

	if err := tx.Commit(); err != nil {
		return matching.ConfirmOutcome{}, err
	}
	return matching.ConfirmOutcome{Match: confirmed, AutoRejected: autoRejected}, nil
}

func (r *MatchesRepo) Reject(ctx context.Context, matchID string, now time.Time) (matching.Match, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE matches
		SET status = 'rejected', updated_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+matchColumns+`
	`, matchID, now)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		if _, gerr := r.GetByID(ctx, matchID); gerr != nil {
			return matching.Match{}, gerr
		}
		return matching.Match{}, matching.ErrStateChanged
	}
	return m, err
}

func (r *MatchesRepo) Resolve(ctx context.Context, matchID string, now time.Time) (matching.Match, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return matching.Match{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE matches
		SET status = 'resolved', updated_at = $2, resolved_at = $2
		WHERE id = $1 AND status = 'confirmed'
		RETURNING `+matchColumns+`
	`, matchID, now)

	resolved, err := scanMatch(row)
	if err == sql.ErrNoRows {
		if _, gerr := r.GetByID(ctx, matchID); gerr != nil {
			return matching.Match{}, gerr
		}
		return matching.Match{}, matching.ErrStateChanged
	}
	if err != nil {
		return matching.Match{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE lost_reports
		SET status = 'resolved', updated_at = $2, resolved_at = COALESCE(resolved_at, $2)
		WHERE id = $1
	`, resolved.LostReportID, now); err != nil {
		return matching.Match{}, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE found_reports
		SET status = 'resolved', updated_at = $2, resolved_at = COALESCE(resolved_at, $2)
		WHERE id = $1
	`, resolved.FoundReportID, now); err != nil {
		return matching.Match{}, err
	}

	if err := tx.Commit(); err != nil {
		return matching.Match{}, err
	}
	return resolved, nil
}

func scanMatch(row rowScanner) (matching.Match, error) {
	var m matching.Match
	var reasons string
	var resolvedAt sql.NullTime
	if err := row.Scan(
		&m.ID,
		&m.LostReportID,
		&m.FoundReportID,
		&m.Score,
		&reasons,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
		&resolvedAt,
	); err != nil {
		return matching.Match{}, err
	}
	m.Reasons = matching.SplitReasons(reasons)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		m.ResolvedAt = &t
	}
	return m, nil
}

func matchColumnsPrefixed(alias string) string {
	cols := strings.Split(matchColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"pet-lost-found/internal/domain/reports"
)

type ReportsRepo struct {
	db *sql.DB
}

func NewReportsRepo(db *sql.DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

func (r *ReportsRepo) CreateLost(ctx context.Context, rep reports.LostReport) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lost_reports (
			id, owner_user_id,
			pet_name, pet_type, breed, color, size,
			description, last_seen_location, last_seen_date,
			status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		rep.ID,
		rep.OwnerUserID,
		rep.PetName,
		rep.PetType,
		rep.Breed,
		rep.Color,
		string(rep.Size),
		rep.Description,
		rep.LastSeenLocation,
		rep.LastSeenDate,
		rep.Status,
		rep.CreatedAt,
		rep.UpdatedAt,
	)
	return err
}

func (r *ReportsRepo) CreateFound(ctx context.Context, rep reports.FoundReport) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO found_reports (
			id, reporter_user_id,
			pet_type, breed, color, size,
			description, location_found, date_found,
			contact_email, contact_phone,
			status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		rep.ID,
		rep.ReporterUserID,
		rep.PetType,
		rep.Breed,
		rep.Color,
		string(rep.Size),
		rep.Description,
		rep.LocationFound,
		rep.DateFound,
		rep.ContactEmail,
		rep.ContactPhone,
		rep.Status,
		rep.CreatedAt,
		rep.UpdatedAt,
	)
	return err
}

const lostColumns = `
	id, owner_user_id,
	pet_name, pet_type, breed, color, size,
	description, last_seen_location, last_seen_date,
	status, created_at, updated_at, resolved_at
`

const foundColumns = `
	id, reporter_user_id,
	pet_type, breed, color, size,
	description, location_found, date_found,
	contact_email, contact_phone,
	status, created_at, updated_at, resolved_at
`

func (r *ReportsRepo) GetLost(ctx context.Context, id string) (reports.LostReport, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reports.LostReport{}, reports.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+lostColumns+`
		FROM lost_reports
		WHERE id = $1
	`, id)

	rep, err := scanLost(row)
	if err == sql.ErrNoRows {
		return reports.LostReport{}, reports.ErrNotFound
	}
	return rep, err
}

func (r *ReportsRepo) GetFound(ctx context.Context, id string) (reports.FoundReport, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reports.FoundReport{}, reports.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+foundColumns+`
		FROM found_reports
		WHERE id = $1
	`, id)

	rep, err := scanFound(row)
	if err == sql.ErrNoRows {
		return reports.FoundReport{}, reports.ErrNotFound
	}
	return rep, err
}

func (r *ReportsRepo) ListLost(ctx context.Context, filter reports.ListFilter) ([]reports.LostReport, error) {
	where, args := buildFilter(map[string]any{
		"status":        string(filter.Status),
		"owner_user_id": filter.OwnerUserID,
		"pet_type":      string(filter.PetType),
	})

	q := `SELECT ` + lostColumns + ` FROM lost_reports` + where + ` ORDER BY created_at ASC`
	if filter.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.LostReport, 0)
	for rows.Next() {
		rep, err := scanLost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *ReportsRepo) ListFound(ctx context.Context, filter reports.ListFilter) ([]reports.FoundReport, error) {
	where, args := buildFilter(map[string]any{
		"status":           string(filter.Status),
		"reporter_user_id": filter.ReporterUserID,
		"pet_type":         string(filter.PetType),
	})

	q := `SELECT ` + foundColumns + ` FROM found_reports` + where + ` ORDER BY created_at ASC`
	if filter.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reports.FoundReport, 0)
	for rows.Next() {
		rep, err := scanFound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *ReportsRepo) UpdateLostStatus(ctx context.Context, id string, status reports.Status, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE lost_reports
		SET status = $2,
		    updated_at = $3,
		    resolved_at = CASE WHEN $2 = 'resolved' THEN COALESCE(resolved_at, $3) ELSE resolved_at END
		WHERE id = $1
	`, id, status, now)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return reports.ErrNotFound
	}
	return nil
}

func (r *ReportsRepo) UpdateFoundStatus(ctx context.Context, id string, status reports.Status, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE found_reports
		SET status = $2,
		    updated_at = $3,
		    resolved_at = CASE WHEN $2 = 'resolved' THEN COALESCE(resolved_at, $3) ELSE resolved_at END
		WHERE id = $1
	`, id, status, now)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return reports.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLost(row rowScanner) (reports.LostReport, error) {
	var rep reports.LostReport
	var size sql.NullString
	var resolvedAt sql.NullTime
	if err := row.Scan(
		&rep.ID,
		&rep.OwnerUserID,
		&rep.PetName,
		&rep.PetType,
		&rep.Breed,
		&rep.Color,
		&size,
		&rep.Description,
		&rep.LastSeenLocation,
		&rep.LastSeenDate,
		&rep.Status,
		&rep.CreatedAt,
		&rep.UpdatedAt,
		&resolvedAt,
	); err != nil {
		return reports.LostReport{}, err
	}
	if size.Valid {
		rep.Size = reports.Size(size.String)
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		rep.ResolvedAt = &t
	}
	return rep, nil
}

func scanFound(row rowScanner) (reports.FoundReport, error) {
	var rep reports.FoundReport
	var size sql.NullString
	var resolvedAt sql.NullTime
	if err := row.Scan(
		&rep.ID,
		&rep.ReporterUserID,
		&rep.PetType,
		&rep.Breed,
		&rep.Color,
		&size,
		&rep.Description,
		&rep.LocationFound,
		&rep.DateFound,
		&rep.ContactEmail,
		&rep.ContactPhone,
		&rep.Status,
		&rep.CreatedAt,
		&rep.UpdatedAt,
		&resolvedAt,
	); err != nil {
		return reports.FoundReport{}, err
	}
	if size.Valid {
		rep.Size = reports.Size(size.String)
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		rep.ResolvedAt = &t
	}
	return rep, nil
}

// buildFilter arma el WHERE con los campos no vacíos, en orden estable.
func buildFilter(fields map[string]any) (string, []any) {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	// orden determinístico para que los placeholders sean estables
	sort.Strings(cols)

	conds := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		v := fields[col]
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/admissions/internal/common"
	"github.com/dmitrijs2005/admissions/internal/dbx"
	"github.com/dmitrijs2005/admissions/internal/server/models"
)

// The descriptive columns are many and fixed, so the statements are built
// once from models.ApplicationFields. Identifiers are quoted because
// "references" is reserved in PostgreSQL.
var (
	fieldColumns = quoteAll(models.ApplicationFields)

	selectColumns = "id, user_id, " + strings.Join(fieldColumns, ", ") + ", created_at, updated_at"

	insertQuery = fmt.Sprintf(
		`INSERT INTO applications (user_id, %s, created_at, updated_at)
		 VALUES (%s)
		 RETURNING id`,
		strings.Join(fieldColumns, ", "), placeholders(1, len(fieldColumns)+3))

	updateQuery = fmt.Sprintf(
		`UPDATE applications SET %s, updated_at = $%d
		 WHERE id = $%d`,
		assignments(fieldColumns), len(fieldColumns)+1, len(fieldColumns)+2)

	selectByIDQuery     = `SELECT ` + selectColumns + ` FROM applications WHERE id = $1`
	selectByUserIDQuery = `SELECT ` + selectColumns + ` FROM applications WHERE user_id = $1`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	args := make([]any, 0, len(fieldColumns)+3)
	args = append(args, app.UserID)
	args = append(args, app.FieldValues()...)
	args = append(args, app.CreatedAt, app.UpdatedAt)

	if err := r.db.QueryRowContext(ctx, insertQuery, args...).Scan(&app.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return app, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	return r.getOne(ctx, selectByIDQuery, id)
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Application, error) {
	return r.getOne(ctx, selectByUserIDQuery, userID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Application, error) {
	app := &models.Application{}

	dest := make([]any, 0, len(fieldColumns)+4)
	dest = append(dest, &app.ID, &app.UserID)
	dest = append(dest, app.FieldSlots()...)
	dest = append(dest, &app.CreatedAt, &app.UpdatedAt)

	if err := r.db.QueryRowContext(ctx, query, arg).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return app, nil
}

// Update writes every descriptive field and updated_at of app.
func (r *PostgresRepository) Update(ctx context.Context, app *models.Application) error {
	args := make([]any, 0, len(fieldColumns)+2)
	args = append(args, app.FieldValues()...)
	args = append(args, app.UpdatedAt, app.ID)

	res, err := r.db.ExecContext(ctx, updateQuery, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM applications
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// ListSummaries returns every application with its owner's email, newest
// first. A missing owner row yields the email "Unknown".
func (r *PostgresRepository) ListSummaries(ctx context.Context) ([]models.ApplicationSummary, error) {
	query :=
		`SELECT a.id, a.user_id, COALESCE(u.email, 'Unknown'),
		        a.first_name, a.last_name, a.contact_number, a.gender, a.final_percentage,
		        a.created_at, a.updated_at
		 FROM applications a
		 LEFT JOIN users u ON u.id = a.user_id
		 ORDER BY a.created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ApplicationSummary, 0)
	for rows.Next() {
		var s models.ApplicationSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Email,
			&s.FirstName, &s.LastName, &s.ContactNumber, &s.Gender, &s.FinalPercentage,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = `"` + n + `"`
	}
	return out
}

// placeholders renders "$from, $from+1, ..." with n entries.
func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}

func assignments(columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	return strings.Join(parts, ", ")
}

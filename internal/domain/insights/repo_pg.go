package insights

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediguard/mediguard/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type insightRepoPG struct{ pool *pgxpool.Pool }

func NewInsightRepoPG(pool *pgxpool.Pool) Repository {
	return &insightRepoPG{pool: pool}
}

func (r *insightRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const insightCols = `id, patient_id, record_id, insight_type, severity, title,
	description, recommendations, is_read, created_at`

func scanInsight(row pgx.Row) (*Insight, error) {
	var i Insight
	err := row.Scan(&i.ID, &i.PatientID, &i.RecordID, &i.InsightType,
		&i.Severity, &i.Title, &i.Description, &i.Recommendations,
		&i.IsRead, &i.CreatedAt)
	return &i, err
}

func (r *insightRepoPG) Create(ctx context.Context, i *Insight) error {
	i.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO health_insights (id, patient_id, record_id, insight_type,
			severity, title, description, recommendations)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at`,
		i.ID, i.PatientID, i.RecordID, i.InsightType, i.Severity,
		i.Title, i.Description, i.Recommendations).Scan(&i.CreatedAt)
}

func (r *insightRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Insight, error) {
	return scanInsight(r.conn(ctx).QueryRow(ctx, `SELECT `+insightCols+` FROM health_insights WHERE id = $1`, id))
}

func (r *insightRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Insight, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+insightCols+` FROM health_insights
		WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Insight
	for rows.Next() {
		i, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *insightRepoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM health_insights WHERE patient_id = $1`, patientID).Scan(&n)
	return n, err
}

func (r *insightRepoPG) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE health_insights SET is_read = TRUE WHERE id = $1`, id)
	return err
}

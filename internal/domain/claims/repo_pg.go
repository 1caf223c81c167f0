package claims

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

type claimRepoPG struct{ pool *pgxpool.Pool }

func NewClaimRepoPG(pool *pgxpool.Pool) Repository {
	return &claimRepoPG{pool: pool}
}

func (r *claimRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const claimCols = `id, patient_id, agent_id, policy_number, policy_provider,
	claim_amount, claim_type, description, status, supporting_documents,
	review_notes, resource_hash, submitted_at, updated_at`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(&c.ID, &c.PatientID, &c.AgentID, &c.PolicyNumber,
		&c.PolicyProvider, &c.ClaimAmount, &c.ClaimType, &c.Description,
		&c.Status, &c.SupportingDocuments, &c.ReviewNotes, &c.ResourceHash,
		&c.SubmittedAt, &c.UpdatedAt)
	return &c, err
}

func (r *claimRepoPG) Create(ctx context.Context, c *Claim) error {
	c.ID = uuid.New()
	c.Status = StatusSubmitted
	if c.SupportingDocuments == nil {
		c.SupportingDocuments = []string{}
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO insurance_claims (id, patient_id, policy_number,
			policy_provider, claim_amount, claim_type, description, status,
			supporting_documents, resource_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING submitted_at, updated_at`,
		c.ID, c.PatientID, c.PolicyNumber, c.PolicyProvider, c.ClaimAmount,
		c.ClaimType, c.Description, c.Status, c.SupportingDocuments,
		c.ResourceHash).Scan(&c.SubmittedAt, &c.UpdatedAt)
}

func (r *claimRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return scanClaim(r.conn(ctx).QueryRow(ctx, `SELECT `+claimCols+` FROM insurance_claims WHERE id = $1`, id))
}

func (r *claimRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reviewNotes *string, agentID uuid.UUID) (*Claim, error) {
	return scanClaim(r.conn(ctx).QueryRow(ctx, `
		UPDATE insurance_claims
		SET status = $2, review_notes = COALESCE($3, review_notes),
			agent_id = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+claimCols, id, status, reviewNotes, agentID))
}

func (r *claimRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Claim, error) {
	return r.list(ctx, `SELECT `+claimCols+` FROM insurance_claims WHERE patient_id = $1 ORDER BY submitted_at DESC`, patientID)
}

func (r *claimRepoPG) ListAll(ctx context.Context) ([]*Claim, error) {
	return r.list(ctx, `SELECT `+claimCols+` FROM insurance_claims ORDER BY submitted_at DESC`)
}

func (r *claimRepoPG) list(ctx context.Context, sql string, args ...interface{}) ([]*Claim, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *claimRepoPG) CountByStatus(ctx context.Context, statuses ...string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM insurance_claims WHERE status = ANY($1)`, statuses).Scan(&n)
	return n, err
}

func (r *claimRepoPG) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM insurance_claims`).Scan(&n)
	return n, err
}

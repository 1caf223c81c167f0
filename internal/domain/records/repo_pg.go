package records

import (
	"context"
	"time"

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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// -- Medical records --

type recordRepoPG struct{ pool *pgxpool.Pool }

func NewRecordRepoPG(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

const recordCols = `id, patient_id, title, description, file_type, file_url,
	file_size, record_type, uploaded_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var r MedicalRecord
	err := row.Scan(&r.ID, &r.PatientID, &r.Title, &r.Description, &r.FileType,
		&r.FileURL, &r.FileSize, &r.RecordType, &r.UploadedAt)
	return &r, err
}

func (r *recordRepoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	rec.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO medical_records (id, patient_id, title, description,
			file_type, file_url, file_size, record_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING uploaded_at`,
		rec.ID, rec.PatientID, rec.Title, rec.Description,
		rec.FileType, rec.FileURL, rec.FileSize, rec.RecordType).Scan(&rec.UploadedAt)
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+recordCols+` FROM medical_records
		WHERE patient_id = $1 ORDER BY uploaded_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *recordRepoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM medical_records WHERE patient_id = $1`, patientID).Scan(&n)
	return n, err
}

func (r *recordRepoPG) ListAccessible(ctx context.Context, granteeID uuid.UUID) ([]*MedicalRecord, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT DISTINCT m.id, m.patient_id, m.title, m.description, m.file_type,
			m.file_url, m.file_size, m.record_type, m.uploaded_at
		FROM medical_records m
		JOIN access_permissions p ON p.record_id = m.id
		WHERE p.granted_to_id = $1 AND p.is_active
		ORDER BY m.uploaded_at DESC`, granteeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]*MedicalRecord, error) {
	var items []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

// -- Access permissions --

type permissionRepoPG struct{ pool *pgxpool.Pool }

func NewPermissionRepoPG(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepoPG{pool: pool}
}

const permCols = `id, record_id, granted_to_id, granted_by_id, access_level,
	granted_at, revoked_at, is_active`

func scanPermission(row pgx.Row) (*AccessPermission, error) {
	var p AccessPermission
	err := row.Scan(&p.ID, &p.RecordID, &p.GrantedToID, &p.GrantedByID,
		&p.AccessLevel, &p.GrantedAt, &p.RevokedAt, &p.IsActive)
	return &p, err
}

func (r *permissionRepoPG) Create(ctx context.Context, p *AccessPermission) error {
	p.ID = uuid.New()
	p.IsActive = true
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO access_permissions (id, record_id, granted_to_id,
			granted_by_id, access_level, is_active)
		VALUES ($1,$2,$3,$4,$5,TRUE)
		RETURNING granted_at`,
		p.ID, p.RecordID, p.GrantedToID, p.GrantedByID, p.AccessLevel).Scan(&p.GrantedAt)
}

func (r *permissionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*AccessPermission, error) {
	return scanPermission(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+permCols+` FROM access_permissions WHERE id = $1`, id))
}

func (r *permissionRepoPG) Revoke(ctx context.Context, id uuid.UUID) (*AccessPermission, error) {
	now := time.Now().UTC()
	return scanPermission(conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE access_permissions SET is_active = FALSE, revoked_at = $2
		WHERE id = $1
		RETURNING `+permCols, id, now))
}

func (r *permissionRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*AccessPermission, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+permCols+` FROM access_permissions
		WHERE record_id = $1 ORDER BY granted_at DESC`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AccessPermission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *permissionRepoPG) CountActiveByGrantor(ctx context.Context, grantorID uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT COUNT(*) FROM access_permissions
		WHERE granted_by_id = $1 AND is_active`, grantorID).Scan(&n)
	return n, err
}

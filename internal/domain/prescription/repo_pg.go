package prescription

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

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) Repository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const rxCols = `id, patient_id, doctor_id, diagnosis, notes, status,
	dispensed_by_id, dispensed_at, resource_hash, created_at`

func scanRx(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.Diagnosis, &p.Notes,
		&p.Status, &p.DispensedByID, &p.DispensedAt, &p.ResourceHash, &p.CreatedAt)
	return &p, err
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription, items []*Item) error {
	p.ID = uuid.New()
	p.Status = StatusPending
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, diagnosis, notes,
			status, resource_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		p.ID, p.PatientID, p.DoctorID, p.Diagnosis, p.Notes,
		p.Status, p.ResourceHash).Scan(&p.CreatedAt)
	if err != nil {
		return err
	}
	for _, item := range items {
		item.ID = uuid.New()
		item.PrescriptionID = p.ID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO prescription_items (id, prescription_id, medication_name,
				dosage, frequency, duration, instructions)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, item.PrescriptionID, item.MedicationName,
			item.Dosage, item.Frequency, item.Duration, item.Instructions)
		if err != nil {
			return err
		}
	}
	p.Items = items
	return nil
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scanRx(r.conn(ctx).QueryRow(ctx, `SELECT `+rxCols+` FROM prescriptions WHERE id = $1`, id))
}

func (r *prescriptionRepoPG) GetItems(ctx context.Context, prescriptionID uuid.UUID) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, prescription_id, medication_name, dosage, frequency, duration, instructions
		FROM prescription_items WHERE prescription_id = $1`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.PrescriptionID, &it.MedicationName,
			&it.Dosage, &it.Frequency, &it.Duration, &it.Instructions); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *prescriptionRepoPG) MarkDispensed(ctx context.Context, id, pharmacyID uuid.UUID, at time.Time) (*Prescription, error) {
	return scanRx(r.conn(ctx).QueryRow(ctx, `
		UPDATE prescriptions
		SET status = $2, dispensed_by_id = $3, dispensed_at = $4
		WHERE id = $1
		RETURNING `+rxCols, id, StatusDispensed, pharmacyID, at))
}

func (r *prescriptionRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Prescription, error) {
	return r.list(ctx, `SELECT `+rxCols+` FROM prescriptions WHERE doctor_id = $1 ORDER BY created_at DESC`, doctorID)
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	return r.list(ctx, `SELECT `+rxCols+` FROM prescriptions WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
}

func (r *prescriptionRepoPG) ListAll(ctx context.Context) ([]*Prescription, error) {
	return r.list(ctx, `SELECT `+rxCols+` FROM prescriptions ORDER BY created_at DESC`)
}

func (r *prescriptionRepoPG) list(ctx context.Context, sql string, args ...interface{}) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := scanRx(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *prescriptionRepoPG) CountByDoctor(ctx context.Context, doctorID uuid.UUID, status string) (int, error) {
	var n int
	var err error
	if status == "" {
		err = r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions WHERE doctor_id = $1`, doctorID).Scan(&n)
	} else {
		err = r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions WHERE doctor_id = $1 AND status = $2`, doctorID, status).Scan(&n)
	}
	return n, err
}

func (r *prescriptionRepoPG) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions WHERE status = $1`, status).Scan(&n)
	return n, err
}

func (r *prescriptionRepoPG) CountDispensedSince(ctx context.Context, pharmacyID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM prescriptions
		WHERE dispensed_by_id = $1 AND dispensed_at >= $2`, pharmacyID, since).Scan(&n)
	return n, err
}

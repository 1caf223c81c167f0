package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription statuses.
const (
	StatusPending   = "pending"
	StatusDispensed = "dispensed"
)

// Prescription maps to the prescriptions table. ResourceHash is stamped at
// creation from the ledger's salted digest and shown during verification.
type Prescription struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Diagnosis     string     `db:"diagnosis" json:"diagnosis"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	Status        string     `db:"status" json:"status"`
	DispensedByID *uuid.UUID `db:"dispensed_by_id" json:"dispensed_by_id,omitempty"`
	DispensedAt   *time.Time `db:"dispensed_at" json:"dispensed_at,omitempty"`
	ResourceHash  string     `db:"resource_hash" json:"resource_hash"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`

	Items []*Item `db:"-" json:"items,omitempty"`
}

// Item maps to the prescription_items table.
type Item struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	MedicationName string    `db:"medication_name" json:"medication_name"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Frequency      string    `db:"frequency" json:"frequency"`
	Duration       string    `db:"duration" json:"duration"`
	Instructions   *string   `db:"instructions" json:"instructions,omitempty"`
}

// CreateInput carries a new prescription.
type CreateInput struct {
	PatientID uuid.UUID    `json:"patient_id"`
	Diagnosis string       `json:"diagnosis"`
	Notes     *string      `json:"notes,omitempty"`
	Items     []*ItemInput `json:"items"`
}

// ItemInput carries one medication line.
type ItemInput struct {
	MedicationName string  `json:"medication_name"`
	Dosage         string  `json:"dosage"`
	Frequency      string  `json:"frequency"`
	Duration       string  `json:"duration"`
	Instructions   *string `json:"instructions,omitempty"`
}

// DoctorStats summarizes a doctor's prescribing activity.
type DoctorStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Dispensed int `json:"dispensed"`
}

// PharmacyStats summarizes dispensing activity.
type PharmacyStats struct {
	Pending        int `json:"pending"`
	DispensedToday int `json:"dispensed_today"`
	DispensedTotal int `json:"dispensed_total"`
}

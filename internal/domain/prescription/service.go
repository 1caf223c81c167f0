package prescription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediguard/mediguard/internal/domain/ledger"
	"github.com/mediguard/mediguard/internal/platform/auth"
	"github.com/mediguard/mediguard/internal/platform/db"
)

// Sentinel errors for the prescription domain.
var (
	ErrNotFound         = errors.New("prescription not found")
	ErrAlreadyDispensed = errors.New("prescription already dispensed")
)

// AuditLog is the slice of the ledger service the prescription domain needs.
type AuditLog interface {
	Append(ctx context.Context, actorID uuid.UUID, actionType, resourceType, resourceID string, metadata map[string]interface{}) (*ledger.Transaction, error)
	ResourceHash(data interface{}) (string, error)
}

// Service provides business logic for prescriptions.
type Service struct {
	rx    Repository
	audit AuditLog
	tx    db.TxRunner
}

// NewService creates a new prescription service.
func NewService(rx Repository, audit AuditLog, tx db.TxRunner) *Service {
	return &Service{rx: rx, audit: audit, tx: tx}
}

// Create issues a new prescription, stamps it with a resource hash, and
// appends one create_prescription ledger entry, all in one transaction.
func (s *Service) Create(ctx context.Context, doctorID uuid.UUID, in CreateInput) (*Prescription, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if in.Diagnosis == "" {
		return nil, fmt.Errorf("diagnosis is required")
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("at least one medication is required")
	}
	items := make([]*Item, 0, len(in.Items))
	for i, it := range in.Items {
		if it.MedicationName == "" || it.Dosage == "" || it.Frequency == "" || it.Duration == "" {
			return nil, fmt.Errorf("item %d: medication_name, dosage, frequency and duration are required", i)
		}
		items = append(items, &Item{
			MedicationName: it.MedicationName,
			Dosage:         it.Dosage,
			Frequency:      it.Frequency,
			Duration:       it.Duration,
			Instructions:   it.Instructions,
		})
	}

	hash, err := s.audit.ResourceHash(map[string]interface{}{
		"patient_id": in.PatientID.String(),
		"doctor_id":  doctorID.String(),
		"diagnosis":  in.Diagnosis,
		"items":      in.Items,
	})
	if err != nil {
		return nil, err
	}

	p := &Prescription{
		PatientID:    in.PatientID,
		DoctorID:     doctorID,
		Diagnosis:    in.Diagnosis,
		Notes:        in.Notes,
		ResourceHash: hash,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.rx.Create(ctx, p, items); err != nil {
			return err
		}
		_, err := s.audit.Append(ctx, doctorID, ledger.ActionCreatePrescription,
			ledger.ResourcePrescription, p.ID.String(), map[string]interface{}{
				"patient_id": in.PatientID.String(),
				"diagnosis":  in.Diagnosis,
				"item_count": len(items),
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Dispense marks a pending prescription as dispensed by the given pharmacy
// and appends one dispense_prescription entry, committing both together.
func (s *Service) Dispense(ctx context.Context, pharmacyID, prescriptionID uuid.UUID) (*Prescription, error) {
	p, err := s.rx.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, ErrNotFound
	}
	if p.Status == StatusDispensed {
		return nil, ErrAlreadyDispensed
	}

	var updated *Prescription
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		updated, err = s.rx.MarkDispensed(ctx, prescriptionID, pharmacyID, time.Now().UTC())
		if err != nil {
			return err
		}
		_, err := s.audit.Append(ctx, pharmacyID, ledger.ActionDispensePrescription,
			ledger.ResourcePrescription, prescriptionID.String(), map[string]interface{}{
				"patient_id": p.PatientID.String(),
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// VerifyResult is what the verification endpoint returns: the prescription,
// its items, and whether its stored hash is present.
type VerifyResult struct {
	Prescription *Prescription `json:"prescription"`
	Verified     bool          `json:"verified"`
}

// Verify loads a prescription with its items for pharmacy-side checking.
func (s *Service) Verify(ctx context.Context, prescriptionID uuid.UUID) (*VerifyResult, error) {
	p, err := s.rx.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, ErrNotFound
	}
	items, err := s.rx.GetItems(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return &VerifyResult{Prescription: p, Verified: p.ResourceHash != ""}, nil
}

// Get loads a prescription with its items.
func (s *Service) Get(ctx context.Context, prescriptionID uuid.UUID) (*Prescription, error) {
	p, err := s.rx.GetByID(ctx, prescriptionID)
	if err != nil {
		return nil, ErrNotFound
	}
	items, err := s.rx.GetItems(ctx, prescriptionID)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return p, nil
}

// ListFor returns the prescriptions visible to the given user: doctors see
// what they authored, patients what they received, pharmacies and insurers
// everything.
func (s *Service) ListFor(ctx context.Context, userID uuid.UUID, role string) ([]*Prescription, error) {
	switch role {
	case auth.RoleDoctor:
		return s.rx.ListByDoctor(ctx, userID)
	case auth.RolePatient:
		return s.rx.ListByPatient(ctx, userID)
	case auth.RolePharmacy, auth.RoleInsurance:
		return s.rx.ListAll(ctx)
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// StatsForDoctor summarizes the doctor's prescribing activity.
func (s *Service) StatsForDoctor(ctx context.Context, doctorID uuid.UUID) (*DoctorStats, error) {
	st := &DoctorStats{}
	var err error
	if st.Total, err = s.rx.CountByDoctor(ctx, doctorID, ""); err != nil {
		return nil, err
	}
	if st.Pending, err = s.rx.CountByDoctor(ctx, doctorID, StatusPending); err != nil {
		return nil, err
	}
	if st.Dispensed, err = s.rx.CountByDoctor(ctx, doctorID, StatusDispensed); err != nil {
		return nil, err
	}
	return st, nil
}

// StatsForPharmacy summarizes dispensing activity for the given pharmacy.
func (s *Service) StatsForPharmacy(ctx context.Context, pharmacyID uuid.UUID) (*PharmacyStats, error) {
	st := &PharmacyStats{}
	var err error
	if st.Pending, err = s.rx.CountByStatus(ctx, StatusPending); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if st.DispensedToday, err = s.rx.CountDispensedSince(ctx, pharmacyID, midnight); err != nil {
		return nil, err
	}
	if st.DispensedTotal, err = s.rx.CountDispensedSince(ctx, pharmacyID, time.Time{}); err != nil {
		return nil, err
	}
	return st, nil
}

package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediguard/mediguard/internal/domain/ledger"
	"github.com/mediguard/mediguard/internal/platform/db"
)

// Sentinel errors for the records domain. Grant paths fold "record does not
// exist" into ErrAccessDenied so callers cannot probe for record ids they do
// not own.
var (
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
)

// AuditLog is the slice of the ledger service the records domain needs.
type AuditLog interface {
	Append(ctx context.Context, actorID uuid.UUID, actionType, resourceType, resourceID string, metadata map[string]interface{}) (*ledger.Transaction, error)
	CountForActor(ctx context.Context, actorID uuid.UUID) (int, error)
}

// Analyzer inspects an uploaded record's description for health signals.
type Analyzer interface {
	AnalyzeRecord(ctx context.Context, patientID, recordID uuid.UUID, description string) error
}

// InsightCounter reports how many insights a patient has, for the dashboard.
type InsightCounter interface {
	CountForPatient(ctx context.Context, patientID uuid.UUID) (int, error)
}

// Service provides business logic for medical records and access
// permissions.
type Service struct {
	records  RecordRepository
	perms    PermissionRepository
	audit    AuditLog
	tx       db.TxRunner
	analyzer Analyzer
	insights InsightCounter
}

// NewService creates a new records service.
func NewService(records RecordRepository, perms PermissionRepository, audit AuditLog, tx db.TxRunner) *Service {
	return &Service{records: records, perms: perms, audit: audit, tx: tx}
}

// SetAnalyzer attaches an optional insights analyzer, invoked best-effort
// after each upload.
func (s *Service) SetAnalyzer(a Analyzer) { s.analyzer = a }

// SetInsightCounter attaches an optional insight counter for patient stats.
func (s *Service) SetInsightCounter(c InsightCounter) { s.insights = c }

// UploadInput carries the metadata of an uploaded file.
type UploadInput struct {
	Title       string
	Description *string
	RecordType  string
	FileName    string
	FileType    string
	FileSize    int64
}

// Upload stores a record's metadata and appends one upload_record ledger
// entry, committing both together. The insights analyzer runs afterwards and
// its failure never fails the upload.
func (s *Service) Upload(ctx context.Context, patientID uuid.UUID, in UploadInput) (*MedicalRecord, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !ValidRecordType(in.RecordType) {
		return nil, fmt.Errorf("unknown record type %q", in.RecordType)
	}
	if in.FileName == "" {
		return nil, fmt.Errorf("file is required")
	}

	rec := &MedicalRecord{
		PatientID:   patientID,
		Title:       in.Title,
		Description: in.Description,
		FileType:    in.FileType,
		FileURL:     uploadURL(in.FileName),
		FileSize:    in.FileSize,
		RecordType:  in.RecordType,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.records.Create(ctx, rec); err != nil {
			return err
		}
		_, err := s.audit.Append(ctx, patientID, ledger.ActionUploadRecord,
			ledger.ResourceMedicalRecord, rec.ID.String(), map[string]interface{}{
				"title":       rec.Title,
				"record_type": rec.RecordType,
			})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.analyzer != nil && rec.Description != nil {
		_ = s.analyzer.AnalyzeRecord(ctx, patientID, rec.ID, *rec.Description)
	}
	return rec, nil
}

// uploadURL builds the stored location for an uploaded file. Actual blob
// storage is out of scope; the URL records where the file would live.
func uploadURL(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("/uploads/%d-%s", time.Now().UnixNano(), name)
}

// Grant shares a record with another user. The record must exist and belong
// to ownerID; both failures surface as ErrAccessDenied. The permission row
// and its grant_access ledger entry commit in one transaction. Granting the
// same record to the same user twice creates a second permission row.
func (s *Service) Grant(ctx context.Context, ownerID, recordID, granteeID uuid.UUID, accessLevel string) (*AccessPermission, error) {
	if accessLevel == "" {
		accessLevel = AccessView
	}
	if accessLevel != AccessView && accessLevel != AccessDownload {
		return nil, fmt.Errorf("unknown access level %q", accessLevel)
	}

	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil || rec.PatientID != ownerID {
		return nil, ErrAccessDenied
	}

	perm := &AccessPermission{
		RecordID:    recordID,
		GrantedToID: granteeID,
		GrantedByID: ownerID,
		AccessLevel: accessLevel,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.perms.Create(ctx, perm); err != nil {
			return err
		}
		_, err := s.audit.Append(ctx, ownerID, ledger.ActionGrantAccess,
			ledger.ResourceAccessPermission, perm.ID.String(), map[string]interface{}{
				"record_id":    recordID.String(),
				"granted_to":   granteeID.String(),
				"access_level": accessLevel,
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	return perm, nil
}

// Revoke withdraws a previously granted permission. Only the user who
// granted it may revoke it. Revoking an already revoked permission succeeds
// and re-stamps revoked_at. The update and the revoke_access ledger entry
// commit together.
func (s *Service) Revoke(ctx context.Context, requesterID, permissionID uuid.UUID) (*AccessPermission, error) {
	perm, err := s.perms.GetByID(ctx, permissionID)
	if err != nil {
		return nil, ErrNotFound
	}
	if perm.GrantedByID != requesterID {
		return nil, ErrAccessDenied
	}

	var revoked *AccessPermission
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		revoked, err = s.perms.Revoke(ctx, permissionID)
		if err != nil {
			return err
		}
		_, err := s.audit.Append(ctx, requesterID, ledger.ActionRevokeAccess,
			ledger.ResourceAccessPermission, permissionID.String(), map[string]interface{}{
				"record_id":  perm.RecordID.String(),
				"granted_to": perm.GrantedToID.String(),
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	return revoked, nil
}

// PermissionsForRecord returns a record's full sharing history, active and
// revoked rows alike. Only the record's owner may read it; a missing record
// is indistinguishable from someone else's.
func (s *Service) PermissionsForRecord(ctx context.Context, requesterID, recordID uuid.UUID) ([]*AccessPermission, error) {
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil || rec.PatientID != requesterID {
		return nil, ErrAccessDenied
	}
	return s.perms.ListByRecord(ctx, recordID)
}

// ListOwn returns the patient's own records, newest first.
func (s *Service) ListOwn(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error) {
	return s.records.ListByPatient(ctx, patientID)
}

// AccessibleRecords returns the records currently shared with the grantee.
func (s *Service) AccessibleRecords(ctx context.Context, granteeID uuid.UUID) ([]*MedicalRecord, error) {
	return s.records.ListAccessible(ctx, granteeID)
}

// GetRecord returns a record if the requester owns it or holds an active
// permission for it.
func (s *Service) GetRecord(ctx context.Context, requesterID, recordID uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, ErrAccessDenied
	}
	if rec.PatientID == requesterID {
		return rec, nil
	}
	accessible, err := s.records.ListAccessible(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	for _, a := range accessible {
		if a.ID == recordID {
			return rec, nil
		}
	}
	return nil, ErrAccessDenied
}

// Stats assembles the patient dashboard counters. Optional counters that are
// not attached contribute zero.
func (s *Service) Stats(ctx context.Context, patientID uuid.UUID) (*PatientStats, error) {
	st := &PatientStats{}
	var err error
	if st.RecordCount, err = s.records.CountByPatient(ctx, patientID); err != nil {
		return nil, err
	}
	if st.SharedCount, err = s.perms.CountActiveByGrantor(ctx, patientID); err != nil {
		return nil, err
	}
	if st.LedgerCount, err = s.audit.CountForActor(ctx, patientID); err != nil {
		return nil, err
	}
	if s.insights != nil {
		if st.InsightCount, err = s.insights.CountForPatient(ctx, patientID); err != nil {
			return nil, err
		}
	}
	return st, nil
}

package claims

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediguard/mediguard/internal/domain/ledger"
	"github.com/mediguard/mediguard/internal/platform/auth"
	"github.com/mediguard/mediguard/internal/platform/db"
)

// Sentinel errors for the claims domain.
var (
	ErrNotFound          = errors.New("claim not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// AuditLog is the slice of the ledger service the claims domain needs.
type AuditLog interface {
	Append(ctx context.Context, actorID uuid.UUID, actionType, resourceType, resourceID string, metadata map[string]interface{}) (*ledger.Transaction, error)
	ResourceHash(data interface{}) (string, error)
}

// Service provides business logic for insurance claims.
type Service struct {
	claims Repository
	audit  AuditLog
	tx     db.TxRunner
}

// NewService creates a new claims service.
func NewService(claims Repository, audit AuditLog, tx db.TxRunner) *Service {
	return &Service{claims: claims, audit: audit, tx: tx}
}

// Submit files a new claim for the patient, stamps it with a resource hash,
// and appends one submit_claim ledger entry, all in one transaction.
func (s *Service) Submit(ctx context.Context, patientID uuid.UUID, in SubmitInput) (*Claim, error) {
	if in.PolicyNumber == "" || in.PolicyProvider == "" {
		return nil, fmt.Errorf("policy_number and policy_provider are required")
	}
	if in.ClaimAmount <= 0 {
		return nil, fmt.Errorf("claim_amount must be positive")
	}
	if !ValidClaimType(in.ClaimType) {
		return nil, fmt.Errorf("unknown claim type %q", in.ClaimType)
	}
	if in.Description == "" {
		return nil, fmt.Errorf("description is required")
	}

	hash, err := s.audit.ResourceHash(map[string]interface{}{
		"patient_id":    patientID.String(),
		"policy_number": in.PolicyNumber,
		"claim_amount":  in.ClaimAmount,
		"claim_type":    in.ClaimType,
	})
	if err != nil {
		return nil, err
	}

	c := &Claim{
		PatientID:           patientID,
		PolicyNumber:        in.PolicyNumber,
		PolicyProvider:      in.PolicyProvider,
		ClaimAmount:         in.ClaimAmount,
		ClaimType:           in.ClaimType,
		Description:         in.Description,
		SupportingDocuments: in.SupportingDocuments,
		ResourceHash:        hash,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.claims.Create(ctx, c); err != nil {
			return err
		}
		_, err := s.audit.Append(ctx, patientID, ledger.ActionSubmitClaim,
			ledger.ResourceInsuranceClaim, c.ID.String(), map[string]interface{}{
				"claim_type":   in.ClaimType,
				"claim_amount": in.ClaimAmount,
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateStatus moves a claim through its lifecycle on behalf of an insurance
// agent and appends one update_claim_status entry, committing both together.
func (s *Service) UpdateStatus(ctx context.Context, agentID, claimID uuid.UUID, status string, reviewNotes *string) (*Claim, error) {
	c, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !CanTransition(c.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, status)
	}

	var updated *Claim
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		updated, err = s.claims.UpdateStatus(ctx, claimID, status, reviewNotes, agentID)
		if err != nil {
			return err
		}
		_, err := s.audit.Append(ctx, agentID, ledger.ActionUpdateClaimStatus,
			ledger.ResourceInsuranceClaim, claimID.String(), map[string]interface{}{
				"from": c.Status,
				"to":   status,
			})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get loads a single claim.
func (s *Service) Get(ctx context.Context, claimID uuid.UUID) (*Claim, error) {
	c, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// ListFor returns the claims visible to the given user: patients their own,
// insurers everything.
func (s *Service) ListFor(ctx context.Context, userID uuid.UUID, role string) ([]*Claim, error) {
	switch role {
	case auth.RolePatient:
		return s.claims.ListByPatient(ctx, userID)
	case auth.RoleInsurance:
		return s.claims.ListAll(ctx)
	default:
		return nil, fmt.Errorf("role %q cannot list claims", role)
	}
}

// StatsForInsurer summarizes claim volumes.
func (s *Service) StatsForInsurer(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	var err error
	if st.Total, err = s.claims.CountAll(ctx); err != nil {
		return nil, err
	}
	if st.Pending, err = s.claims.CountByStatus(ctx, StatusSubmitted, StatusUnderReview); err != nil {
		return nil, err
	}
	if st.Approved, err = s.claims.CountByStatus(ctx, StatusApproved, StatusPaid); err != nil {
		return nil, err
	}
	if st.Rejected, err = s.claims.CountByStatus(ctx, StatusRejected); err != nil {
		return nil, err
	}
	return st, nil
}

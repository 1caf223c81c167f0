package claims

import (
	"time"

	"github.com/google/uuid"
)

// Claim statuses, in lifecycle order.
const (
	StatusSubmitted   = "submitted"
	StatusUnderReview = "under_review"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	StatusPaid        = "paid"
)

// Claim types.
const (
	TypeHospitalization = "hospitalization"
	TypeOutpatient      = "outpatient"
	TypePharmacy        = "pharmacy"
)

var validClaimTypes = map[string]bool{
	TypeHospitalization: true,
	TypeOutpatient:      true,
	TypePharmacy:        true,
}

// ValidClaimType reports whether the given claim type is known.
func ValidClaimType(t string) bool { return validClaimTypes[t] }

// allowedTransitions maps a status to the statuses it may move to.
var allowedTransitions = map[string][]string{
	StatusSubmitted:   {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusPaid},
}

// CanTransition reports whether a claim may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Claim maps to the insurance_claims table. ClaimAmount is in cents.
type Claim struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	PatientID           uuid.UUID  `db:"patient_id" json:"patient_id"`
	AgentID             *uuid.UUID `db:"agent_id" json:"agent_id,omitempty"`
	PolicyNumber        string     `db:"policy_number" json:"policy_number"`
	PolicyProvider      string     `db:"policy_provider" json:"policy_provider"`
	ClaimAmount         int64      `db:"claim_amount" json:"claim_amount"`
	ClaimType           string     `db:"claim_type" json:"claim_type"`
	Description         string     `db:"description" json:"description"`
	Status              string     `db:"status" json:"status"`
	SupportingDocuments []string   `db:"supporting_documents" json:"supporting_documents"`
	ReviewNotes         *string    `db:"review_notes" json:"review_notes,omitempty"`
	ResourceHash        string     `db:"resource_hash" json:"resource_hash"`
	SubmittedAt         time.Time  `db:"submitted_at" json:"submitted_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// SubmitInput carries a new claim.
type SubmitInput struct {
	PolicyNumber        string   `json:"policy_number"`
	PolicyProvider      string   `json:"policy_provider"`
	ClaimAmount         int64    `json:"claim_amount"`
	ClaimType           string   `json:"claim_type"`
	Description         string   `json:"description"`
	SupportingDocuments []string `json:"supporting_documents"`
}

// Stats summarizes claim volumes for the insurer dashboard.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

package ledger

import (
	"time"

	"github.com/google/uuid"
)

// GenesisHash is the previous_hash sentinel carried by the first entry in the
// chain.
const GenesisHash = "genesis"

// Action types recorded in the ledger. Every sensitive mutation in the portal
// appends exactly one entry with one of these.
const (
	ActionGrantAccess          = "grant_access"
	ActionRevokeAccess         = "revoke_access"
	ActionUploadRecord         = "upload_record"
	ActionCreatePrescription   = "create_prescription"
	ActionDispensePrescription = "dispense_prescription"
	ActionSubmitClaim          = "submit_claim"
	ActionUpdateClaimStatus    = "update_claim_status"
)

// Resource types a ledger entry can reference.
const (
	ResourceMedicalRecord    = "medical_record"
	ResourcePrescription     = "prescription"
	ResourceAccessPermission = "access_permission"
	ResourceInsuranceClaim   = "insurance_claim"
)

var validActions = map[string]bool{
	ActionGrantAccess:          true,
	ActionRevokeAccess:         true,
	ActionUploadRecord:         true,
	ActionCreatePrescription:   true,
	ActionDispensePrescription: true,
	ActionSubmitClaim:          true,
	ActionUpdateClaimStatus:    true,
}

var validResources = map[string]bool{
	ResourceMedicalRecord:    true,
	ResourcePrescription:     true,
	ResourceAccessPermission: true,
	ResourceInsuranceClaim:   true,
}

// ValidAction reports whether the given action type is known.
func ValidAction(action string) bool { return validActions[action] }

// ValidResource reports whether the given resource type is known.
func ValidResource(resource string) bool { return validResources[resource] }

// Transaction maps to the ledger_transactions table. Entries are append-only:
// each one links to its predecessor through PreviousHash, forming a single
// chain ordered by timestamp.
type Transaction struct {
	ID              uuid.UUID              `db:"id" json:"id"`
	TransactionHash string                 `db:"transaction_hash" json:"transaction_hash"`
	ActorID         uuid.UUID              `db:"actor_id" json:"actor_id"`
	ActionType      string                 `db:"action_type" json:"action_type"`
	ResourceType    string                 `db:"resource_type" json:"resource_type"`
	ResourceID      string                 `db:"resource_id" json:"resource_id"`
	Metadata        map[string]interface{} `db:"metadata" json:"metadata"`
	PreviousHash    string                 `db:"previous_hash" json:"previous_hash"`
	Timestamp       time.Time              `db:"timestamp" json:"timestamp"`
}

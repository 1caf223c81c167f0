package insights

import (
	"time"

	"github.com/google/uuid"
)

// Insight types.
const (
	TypeAlert          = "alert"
	TypeRecommendation = "recommendation"
	TypeTrend          = "trend"
)

// Severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Insight maps to the health_insights table.
type Insight struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	RecordID        *uuid.UUID `db:"record_id" json:"record_id,omitempty"`
	InsightType     string     `db:"insight_type" json:"insight_type"`
	Severity        string     `db:"severity" json:"severity"`
	Title           string     `db:"title" json:"title"`
	Description     string     `db:"description" json:"description"`
	Recommendations *string    `db:"recommendations" json:"recommendations,omitempty"`
	IsRead          bool       `db:"is_read" json:"is_read"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

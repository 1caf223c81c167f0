package insights

import (
	"fmt"
	"regexp"
	"strconv"
)

// finding is one signal extracted from a record description, before it is
// persisted as an Insight.
type finding struct {
	InsightType     string
	Severity        string
	Title           string
	Description     string
	Recommendations string
}

var (
	bpRe          = regexp.MustCompile(`(?i)(?:BP|blood pressure):?\s*(\d+)\/(\d+)`)
	glucoseRe     = regexp.MustCompile(`(?i)(?:glucose|blood sugar):?\s*(\d+)`)
	cholesterolRe = regexp.MustCompile(`(?i)cholesterol:?\s*(\d+)`)
)

// analyze extracts vital-sign readings from free text and grades them
// against clinical thresholds.
func analyze(text string) []finding {
	var out []finding

	if m := bpRe.FindStringSubmatch(text); m != nil {
		systolic, _ := strconv.Atoi(m[1])
		diastolic, _ := strconv.Atoi(m[2])
		switch {
		case systolic >= 140 || diastolic >= 90:
			out = append(out, finding{
				InsightType:     TypeAlert,
				Severity:        SeverityHigh,
				Title:           "High Blood Pressure Detected",
				Description:     fmt.Sprintf("Blood pressure reading of %d/%d mmHg is in the hypertension range.", systolic, diastolic),
				Recommendations: "Reduce sodium intake, exercise regularly, and consult your doctor about blood pressure management.",
			})
		case systolic >= 120 || diastolic >= 80:
			out = append(out, finding{
				InsightType:     TypeRecommendation,
				Severity:        SeverityMedium,
				Title:           "Elevated Blood Pressure",
				Description:     fmt.Sprintf("Blood pressure reading of %d/%d mmHg is above the normal range.", systolic, diastolic),
				Recommendations: "Monitor your blood pressure regularly and maintain a heart-healthy diet.",
			})
		}
	}

	if m := glucoseRe.FindStringSubmatch(text); m != nil {
		glucose, _ := strconv.Atoi(m[1])
		switch {
		case glucose > 180:
			out = append(out, finding{
				InsightType:     TypeAlert,
				Severity:        SeverityHigh,
				Title:           "High Blood Glucose Detected",
				Description:     fmt.Sprintf("Glucose reading of %d mg/dL is significantly elevated.", glucose),
				Recommendations: "Limit sugar and refined carbohydrates, and discuss glucose control with your doctor.",
			})
		case glucose > 140:
			out = append(out, finding{
				InsightType:     TypeRecommendation,
				Severity:        SeverityMedium,
				Title:           "Elevated Blood Glucose",
				Description:     fmt.Sprintf("Glucose reading of %d mg/dL is above the normal range.", glucose),
				Recommendations: "Watch your carbohydrate intake and recheck your glucose levels soon.",
			})
		case glucose < 70:
			out = append(out, finding{
				InsightType:     TypeAlert,
				Severity:        SeverityMedium,
				Title:           "Low Blood Sugar Detected",
				Description:     fmt.Sprintf("Glucose reading of %d mg/dL is below the normal range.", glucose),
				Recommendations: "Eat regular meals and carry a fast-acting carbohydrate source. Consult your doctor if this recurs.",
			})
		}
	}

	if m := cholesterolRe.FindStringSubmatch(text); m != nil {
		cholesterol, _ := strconv.Atoi(m[1])
		switch {
		case cholesterol > 240:
			out = append(out, finding{
				InsightType:     TypeAlert,
				Severity:        SeverityHigh,
				Title:           "High Cholesterol Detected",
				Description:     fmt.Sprintf("Total cholesterol of %d mg/dL is in the high range.", cholesterol),
				Recommendations: "Reduce saturated fat, increase fiber, and ask your doctor whether treatment is needed.",
			})
		case cholesterol > 200:
			out = append(out, finding{
				InsightType:     TypeRecommendation,
				Severity:        SeverityMedium,
				Title:           "Borderline High Cholesterol",
				Description:     fmt.Sprintf("Total cholesterol of %d mg/dL is borderline high.", cholesterol),
				Recommendations: "Favor unsaturated fats and recheck your lipid panel within six months.",
			})
		}
	}

	return out
}

// GeneralRecommendations returns baseline wellness guidance shown when a
// patient has no reading-specific insights.
func GeneralRecommendations() []string {
	return []string{
		"Schedule an annual physical examination.",
		"Aim for at least 150 minutes of moderate exercise per week.",
		"Keep your medical records up to date by uploading new results.",
		"Stay hydrated and maintain a balanced diet.",
	}
}

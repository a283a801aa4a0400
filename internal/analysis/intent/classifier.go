package intent

import "strings"

// Label tags the purpose of a patient message.
type Label string

const (
	GeneralQuestion       Label = "general_question"
	AppointmentScheduling Label = "appointment_scheduling"
	TreatmentExplanation  Label = "treatment_explanation"
	CostInquiry           Label = "cost_inquiry"
	PainConcern           Label = "pain_concern"
)

var keywordBuckets = map[Label][]string{
	AppointmentScheduling: {
		"appointment", "schedule", "reschedule", "book", "booking", "cancel", "availability",
		"available", "visit", "come in", "opening", "slot", "next week", "tomorrow",
	},
	TreatmentExplanation: {
		"treatment", "procedure", "filling", "crown", "root canal", "extraction", "implant",
		"cleaning", "whitening", "braces", "veneer", "what is", "how does", "explain",
	},
	CostInquiry: {
		"cost", "price", "how much", "expensive", "insurance", "coverage", "covered",
		"pay", "payment", "bill", "billing", "estimate", "fee", "afford",
	},
	PainConcern: {
		"pain", "hurt", "hurts", "ache", "aching", "sore", "sensitive", "sensitivity",
		"swollen", "swelling", "bleeding", "throbbing", "emergency", "broken tooth",
	},
}

// Classify assigns an intent label to a message using keyword scoring.
// A heuristic stand-in for when the model's reply exposed no intent; the
// default is GeneralQuestion.
func Classify(text string) Label {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return GeneralQuestion
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	best := GeneralQuestion
	bestScore := 0
	for label, s := range scores {
		if s > bestScore {
			bestScore = s
			best = label
		}
	}

	return best
}

package chat

// Context is the per-turn snapshot of session state handed to the
// assistant. It is assembled fresh for every call and never shared, so
// concurrent turns need no locking.
type Context struct {
	UserID          string    `json:"userId"`
	SessionID       string    `json:"sessionId"`
	PatientID       string    `json:"patientId,omitempty"`
	TreatmentPlanID string    `json:"treatmentPlanId,omitempty"`
	Messages        []Message `json:"messages"`
}

// Response is the structured result of one assistant turn. Message is
// always non-empty; the remaining fields are set only when the model's
// reply exposed recognizable structure.
type Response struct {
	Message           string            `json:"message"`
	Intent            string            `json:"intent,omitempty"`
	Slots             map[string]string `json:"slots,omitempty"`
	FollowUpQuestions []string          `json:"followUpQuestions,omitempty"`
}

package chat

import "time"

// Session captures one patient-facing conversation. The patient and
// treatment-plan identifiers are optional and already resolved by the
// caller; the assistant never fetches records itself.
type Session struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	PatientID       string    `json:"patientId,omitempty"`
	TreatmentPlanID string    `json:"treatmentPlanId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

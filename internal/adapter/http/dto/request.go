package dto

// SubmitInstructionRequest carries a raw MT202 message for submission.
type SubmitInstructionRequest struct {
	Message string `json:"message"`
}

// DisputeIntentRequest flags an intent for manual resolution.
type DisputeIntentRequest struct {
	Reason string `json:"reason"`
}

package waitlist

type JoinWaitlistRequest struct {
	Email string `json:"email" form:"email"`
}

// JoinResult is a successful submission, new or duplicate.
type JoinResult struct {
	Outcome
	Email string
}

type JoinWaitlistResponse struct {
	Status    string `json:"status"`
	Email     string `json:"email,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

func ToJoinWaitlistResponse(result *JoinResult) JoinWaitlistResponse {
	if result == nil {
		return JoinWaitlistResponse{Status: StatusError}
	}
	return JoinWaitlistResponse{
		Status:    result.Status,
		Email:     result.Email,
		Duplicate: result.Duplicate,
	}
}

// outcomeOf resolves what the visitor is told for a Join call.
func outcomeOf(result *JoinResult, err error) Outcome {
	if err != nil || result == nil {
		return Classify(err)
	}
	return result.Outcome
}

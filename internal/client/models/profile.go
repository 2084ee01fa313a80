package models

// Profile is the editable profile document kept under optimistic
// concurrency control. A read returns the document together with an
// entity-version token (ETag); a write must present that token and is
// rejected as a conflict when it has gone stale.
type Profile struct {
	DisplayName  string `json:"display_name"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	HomePhone    string `json:"home_phone"`
	WorkPhone    string `json:"work_phone"`
	Email        string `json:"email,omitempty"`
}

// UpdateOutcome is the result of a conditional profile write.
type UpdateOutcome int

const (
	// UpdateApplied means the write was accepted with the presented token.
	UpdateApplied UpdateOutcome = iota
	// UpdateConflict means the presented entity-version token was stale;
	// the caller must re-read the profile before retrying.
	UpdateConflict
	// UpdateFailed covers transport and server errors unrelated to the
	// conditional-write protocol.
	UpdateFailed
)

func (o UpdateOutcome) String() string {
	switch o {
	case UpdateApplied:
		return "applied"
	case UpdateConflict:
		return "conflict"
	case UpdateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

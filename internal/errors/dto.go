package errors

// ErrorResponse is the envelope every failed request serializes to. Success
// is always false; it exists so clients can branch on one field.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the user-facing message plus optional internals.
// Display holds the hint chain; InternalError and Details are only populated
// when the error marked them safe to report.
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

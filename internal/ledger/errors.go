package ledger

import "fmt"

// ValidationError reports a request rejected locally; the ledger was not
// called.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SubmissionError reports a failed remote call. Message is shown to the
// user as is. Rejected is true when the ledger refused the request (unknown
// code, insufficient funds, inactive item) and false when the call itself
// failed.
type SubmissionError struct {
	Message  string
	Rejected bool
	Err      error
}

func (e *SubmissionError) Error() string { return e.Message }

func (e *SubmissionError) Unwrap() error { return e.Err }

// RemoteError is a refusal raised by a ledger procedure.
type RemoteError struct {
	Procedure string
	Message   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Procedure, e.Message)
}

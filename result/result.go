// Package result defines the uniform envelope returned by every public
// operation together with the typed failure taxonomy shared across the SDK.
package result

// Status reports whether an operation completed every step.
type Status string

const (
	// StatusSuccess is set only when every pipeline step completed.
	StatusSuccess Status = "SUCCESS"
	// StatusFailure marks an operation terminated by a taxonomy error.
	StatusFailure Status = "FAILURE"
)

// Wrapped is the invariant envelope carried by all operations. The Result
// shape varies per operation (transaction receipt, decoded values, record
// descriptor) but the envelope does not.
type Wrapped struct {
	Status Status `json:"status"`
	Result any    `json:"result"`
}

// Success wraps a per-operation result value in a SUCCESS envelope.
func Success(v any) *Wrapped {
	return &Wrapped{Status: StatusSuccess, Result: v}
}

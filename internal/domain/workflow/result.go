package workflow

// Kind classifies why a workflow operation ended the way it did
type Kind string

const (
	KindSucceeded Kind = "succeeded"
	KindRejected  Kind = "rejected"
	KindConflict  Kind = "conflict"
	KindFailed    Kind = "failed"
)

// Result is the envelope every workflow operation returns
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
	Kind    Kind     `json:"kind"`
}

// TypedResult carries a payload alongside the envelope
type TypedResult[T any] struct {
	Result
	Data T `json:"data,omitempty"`
}

// Ok returns a successful result
func Ok(message string) Result {
	return Result{Success: true, Message: message, Errors: []string{}, Kind: KindSucceeded}
}

// Fail returns a business-rule rejection
func Fail(message string, errs ...string) Result {
	if len(errs) == 0 {
		errs = []string{message}
	}
	return Result{Success: false, Message: message, Errors: errs, Kind: KindRejected}
}

// Conflict returns a result for a concurrent modification of the same entity
func Conflict(message string) Result {
	return Result{Success: false, Message: message, Errors: []string{message}, Kind: KindConflict}
}

// Internal returns a result for an infrastructure failure
func Internal(message string) Result {
	return Result{Success: false, Message: message, Errors: []string{message}, Kind: KindFailed}
}

// OkWith returns a successful typed result
func OkWith[T any](data T, message string) TypedResult[T] {
	return TypedResult[T]{Result: Ok(message), Data: data}
}

// FailWith returns a rejected typed result
func FailWith[T any](message string, errs ...string) TypedResult[T] {
	return TypedResult[T]{Result: Fail(message, errs...)}
}

// Lift wraps an untyped result
func Lift[T any](r Result) TypedResult[T] {
	return TypedResult[T]{Result: r}
}

// Untyped strips the payload
func (r TypedResult[T]) Untyped() Result {
	return r.Result
}

// Package outcome provides the two-slot success-or-failure value returned by
// every wrapper in this module.  An Outcome holds either a value or an error,
// never both: it is the (value, error) pair Go functions already return,
// reified so it can be stored, passed through channels and futures, and
// destructured by the caller exactly once at the point of use.
package outcome

// Outcome represents the settled result of one operation attempt.
// Exactly one of Val and Err is populated; the other stays at its zero value.
// An Outcome is constructed once by a wrapper and never mutated afterwards.
type Outcome[T any] struct {
	Val T
	Err error
}

// New builds an Outcome directly from a (value, error) return pair.
func New[T any](val T, err error) Outcome[T] {
	return Outcome[T]{Val: val, Err: err}
}

// Success builds a successful Outcome holding val.
func Success[T any](val T) Outcome[T] {
	return Outcome[T]{Val: val}
}

// Failure builds a failed Outcome holding err.
func Failure[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// Unpack destructures the Outcome back into Go's native return pair.
func (o Outcome[T]) Unpack() (T, error) {
	return o.Val, o.Err
}

// IsSuccess reports whether the error slot is empty.
func (o Outcome[T]) IsSuccess() bool {
	return o.Err == nil
}

// IsFailure reports whether the error slot is populated.
func (o Outcome[T]) IsFailure() bool {
	return o.Err != nil
}

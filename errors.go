package des

import (
	"errors"
	"fmt"
)

// ErrReentrantRun is the value Run/Step panic with when called recursively
// from within a payload's own Handle method, mirroring eventloop's
// ErrReentrantRun: the dispatch loop is not reentrant, since it owns the
// single thread of control the whole simulation runs on.
var ErrReentrantRun = errors.New("des: cannot call Run or Step from within a running dispatch loop")

// ContractViolation is the fatal error class of spec §7: scheduling in
// the past, or using a Handle with a Runtime other than the one that
// issued it. The dispatch loop reports one of these via panic rather
// than a returned error, since by definition the caller has a bug, not
// an operational condition it can react to.
type ContractViolation struct {
	Invariant string
	Detail    string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("des: contract violation (%s): %s", e.Invariant, e.Detail)
}

func abortContractViolation(invariant, detail string) {
	panic(&ContractViolation{Invariant: invariant, Detail: detail})
}

// abortContractViolation is a method on Runtime so the fatal diagnostic
// it emits before panicking carries the runtime's own logger, per
// SPEC_FULL.md §2.1's "one Error-level contract violation event
// immediately before the runtime aborts".
func (rt *Runtime[A]) abortContractViolation(invariant, detail string) {
	rt.logger.Err().
		Str("invariant", invariant).
		Str("detail", detail).
		Log("contract violation")
	abortContractViolation(invariant, detail)
}

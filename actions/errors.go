package actions

import "fmt"

// ActionFailedError is an unexpected failure of a simulated pool action: a
// revert the scenario did not expect, or a balance delta outside the
// operation's tolerance.
type ActionFailedError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ActionFailedError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
}

func (e *ActionFailedError) Unwrap() error {
	return e.Err
}

// UnexpectedSuccessError is an action that was required to revert but
// completed normally.
type UnexpectedSuccessError struct {
	Op           string
	ExpectedCode string
}

func (e *UnexpectedSuccessError) Error() string {
	return fmt.Sprintf("%s succeeded but was expected to revert with code %q", e.Op, e.ExpectedCode)
}

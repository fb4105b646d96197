package protocol

import (
	"errors"
	"fmt"
)

// RevertError is a pool action rejected by the protocol's own validation
// logic. Code carries the protocol-defined numeric reason string (Aave-style
// pools revert with codes like "12").
type RevertError struct {
	Op     string
	Code   string
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s reverted with code %q: %s", e.Op, e.Code, e.Reason)
	}
	return fmt.Sprintf("%s reverted with code %q", e.Op, e.Code)
}

// RevertCode extracts the protocol reason code from err, unwrapping as
// needed.
func RevertCode(err error) (string, bool) {
	var re *RevertError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return "", false
}

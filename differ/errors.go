package differ

import "fmt"

// CountMismatchError reports a snapshot length that does not match the
// expected number of new listings.
type CountMismatchError struct {
	ExpectedNew int
	Before      int
	After       int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("listing count mismatch: expected %d reserves (%d before + %d new), got %d",
		e.Before+e.ExpectedNew, e.Before, e.ExpectedNew, e.After)
}

// ConfigChangedError reports a pre-existing reserve whose configuration
// changed across the governance action. It names the offending field and the
// literal before/after values.
type ConfigChangedError struct {
	Index  int
	Symbol string
	Field  string
	Before string
	After  string
}

func (e *ConfigChangedError) Error() string {
	return fmt.Sprintf("unexpected config change on reserve %s (index %d): %s was %s, now %s",
		e.Symbol, e.Index, e.Field, e.Before, e.After)
}

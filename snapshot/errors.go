package snapshot

import "fmt"

// AssetQueryError is a failed external read while assembling a snapshot. The
// underlying cause is forwarded, never swallowed.
type AssetQueryError struct {
	Symbol string // empty for registry-level failures
	Op     string
	Err    error
}

func (e *AssetQueryError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s query failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("reserve %s: %s query failed: %v", e.Symbol, e.Op, e.Err)
}

func (e *AssetQueryError) Unwrap() error {
	return e.Err
}

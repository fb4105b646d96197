package reserve

// Snapshot is an ordered sequence of reserve records read from the protocol
// at a single point in time. Order follows the registry: pre-existing entries
// keep their position between snapshots, new listings may append or insert
// anywhere after them.
type Snapshot []Reserve

// BySymbol returns the first reserve carrying the given symbol. Symbols are
// unique within a well-formed snapshot; first match wins regardless.
func (s Snapshot) BySymbol(symbol string) (Reserve, bool) {
	for _, r := range s {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return Reserve{}, false
}

// Symbols lists the snapshot's symbols in registry order.
func (s Snapshot) Symbols() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = r.Symbol
	}
	return out
}

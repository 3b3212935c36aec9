package pos

// Navigator tracks which candidate is highlighted and responds to
// directional input. It is idle while the candidate list is empty and
// browsing otherwise; browsing keeps 0 <= highlight < len(candidates).
type Navigator struct {
	candidates []Item
	highlight  int
}

// SetCandidates installs a new candidate list and resets the highlight to
// the first entry.
func (n *Navigator) SetCandidates(candidates []Item) {
	n.candidates = candidates
	n.highlight = 0
}

// Candidates returns the current candidate list.
func (n *Navigator) Candidates() []Item {
	return n.candidates
}

// Highlight returns the highlighted index. Meaningless while idle.
func (n *Navigator) Highlight() int {
	return n.highlight
}

// Browsing reports whether there are candidates to navigate.
func (n *Navigator) Browsing() bool {
	return len(n.candidates) > 0
}

// Next advances the highlight, wrapping past the last candidate.
func (n *Navigator) Next() {
	if len(n.candidates) == 0 {
		return
	}
	n.highlight = (n.highlight + 1) % len(n.candidates)
}

// Prev moves the highlight back, wrapping past the first candidate.
func (n *Navigator) Prev() {
	if len(n.candidates) == 0 {
		return
	}
	n.highlight = (n.highlight - 1 + len(n.candidates)) % len(n.candidates)
}

// Confirm yields the highlighted candidate and returns to idle. The second
// return is false while idle.
func (n *Navigator) Confirm() (Item, bool) {
	if len(n.candidates) == 0 {
		return Item{}, false
	}
	chosen := n.candidates[n.highlight]
	n.candidates = nil
	n.highlight = 0
	return chosen, true
}

// Select confirms the candidate at index i directly, regardless of the
// current highlight. Pointer-based selection maps onto this.
func (n *Navigator) Select(i int) (Item, bool) {
	if i < 0 || i >= len(n.candidates) {
		return Item{}, false
	}
	n.highlight = i
	return n.Confirm()
}

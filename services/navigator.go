package services

// TermNavigator tracks which term of one group is on screen.
type TermNavigator struct {
	Current int
	Count   int
}

func NewTermNavigator(count, current int) *TermNavigator {
	n := &TermNavigator{Count: count}
	if !n.JumpTo(current) {
		n.Current = 0
	}
	return n
}

// Next wraps from the last term to the first.
func (n *TermNavigator) Next() {
	if n.Count <= 0 {
		return
	}
	n.Current = (n.Current + 1) % n.Count
}

// Previous wraps from the first term to the last.
func (n *TermNavigator) Previous() {
	if n.Count <= 0 {
		return
	}
	n.Current = (n.Current - 1 + n.Count) % n.Count
}

// JumpTo moves to i when it is a valid position and reports whether it did.
func (n *TermNavigator) JumpTo(i int) bool {
	if i < 0 || i >= n.Count {
		return false
	}
	n.Current = i
	return true
}

// Position is the 1-based label shown under the card, e.g. 2 of 5.
func (n *TermNavigator) Position() int {
	if n.Count == 0 {
		return 0
	}
	return n.Current + 1
}

func (n *TermNavigator) CanMove() bool {
	return n.Count > 1
}

package changehistory

import (
	"fmt"

	"idchain/internal/domain"
)

// Relation describes how an incoming history relates to a stored one.
type Relation int

const (
	// Conflict means the histories diverge at some index.
	Conflict Relation = iota
	// Equal means the histories are byte-identical.
	Equal
	// Newer means the incoming history strictly extends the stored one.
	Newer
	// Older means the incoming history is a strict prefix of the stored one.
	Older
)

func (r Relation) String() string {
	switch r {
	case Equal:
		return "equal"
	case Newer:
		return "newer"
	case Older:
		return "older"
	default:
		return "conflict"
	}
}

// Compare reports how incoming relates to stored. Changes are compared
// byte for byte, index by index.
func Compare(stored, incoming domain.ChangeHistory) Relation {
	n := min(len(stored), len(incoming))
	for i := 0; i < n; i++ {
		if !stored[i].Equal(incoming[i]) {
			return Conflict
		}
	}
	switch {
	case len(incoming) == len(stored):
		return Equal
	case len(incoming) > len(stored):
		return Newer
	default:
		return Older
	}
}

// Reconcile decides whether incoming may replace stored. It returns
// replace=true for a strict extension, replace=false for an identical
// history, and domain.ErrConflictingHistory for a fork or a stale prefix.
func Reconcile(stored, incoming domain.ChangeHistory) (replace bool, err error) {
	switch Compare(stored, incoming) {
	case Equal:
		return false, nil
	case Newer:
		return true, nil
	case Older:
		return false, fmt.Errorf(
			"%w: incoming history (%d changes) is a prefix of the stored one (%d changes)",
			domain.ErrConflictingHistory, len(incoming), len(stored),
		)
	default:
		return false, fmt.Errorf(
			"%w: incoming history forks from the stored one", domain.ErrConflictingHistory,
		)
	}
}

package tagfile

import (
	"github.com/pkg/errors"
)

// Handle is a stable index into the node arena.
type Handle int

// NilHandle is what reference index 0 resolves to.
const NilHandle Handle = -1

type slotState uint8

const (
	slotPending slotState = iota
	slotFilled
)

type slot struct {
	state slotState
	node  *Node
}

// Arena owns every node of one parse. Slots reserved by forward
// references stay pending until their node record is read.
type Arena struct {
	slots []slot
}

func (a *Arena) reserve() Handle {
	a.slots = append(a.slots, slot{state: slotPending})
	return Handle(len(a.slots) - 1)
}

func (a *Arena) fill(h Handle, n *Node) {
	a.slots[h] = slot{state: slotFilled, node: n}
}

func (a *Arena) push(n *Node) Handle {
	a.slots = append(a.slots, slot{state: slotFilled, node: n})
	return Handle(len(a.slots) - 1)
}

func (a *Arena) Len() int {
	return len(a.slots)
}

func (a *Arena) IsPending(h Handle) bool {
	return h >= 0 && int(h) < len(a.slots) && a.slots[h].state == slotPending
}

// Node dereferences h. Nil, out of range and pending handles are ErrReference.
func (a *Arena) Node(h Handle) (*Node, error) {
	if h == NilHandle {
		return nil, errors.Wrap(ErrReference, "null reference")
	}
	if h < 0 || int(h) >= len(a.slots) {
		return nil, errors.Wrapf(ErrReference, "node #%d out of range (%d nodes)", h, len(a.slots))
	}
	s := a.slots[h]
	if s.state == slotPending {
		return nil, errors.Wrapf(ErrReference, "node #%d was reserved but never populated", h)
	}
	return s.node, nil
}

// PendingCount is the number of reserved slots without a node.
func (a *Arena) PendingCount() int {
	n := 0
	for _, s := range a.slots {
		if s.state == slotPending {
			n++
		}
	}
	return n
}

package tagfile

import (
	"fmt"
)

type Node struct {
	Definition *Definition
	// Values has one entry per Definition.NestedFields; nil means omitted.
	Values []Value
}

func (n *Node) Get(name string) (Value, bool) {
	i := n.Definition.FieldIndex(name)
	if i < 0 || n.Values[i] == nil {
		return nil, false
	}
	return n.Values[i], true
}

func (n *Node) String() string {
	present := 0
	for _, v := range n.Values {
		if v != nil {
			present++
		}
	}
	return fmt.Sprintf("%s (%d/%d values)", n.Definition.Name, present, len(n.Values))
}

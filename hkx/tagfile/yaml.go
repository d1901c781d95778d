package tagfile

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type yamlBuilder struct {
	nodes *Arena
	done  map[Handle]*yaml.Node
	open  map[Handle]bool
}

// YAML renders the node graph below h as a yaml tree. Shared nodes become
// anchors and aliases, a reference back to an enclosing node becomes a !ref scalar.
func (d *Document) YAML(h Handle) (*yaml.Node, error) {
	b := &yamlBuilder{
		nodes: d.Nodes,
		done:  make(map[Handle]*yaml.Node),
		open:  make(map[Handle]bool),
	}
	return b.node(h)
}

func (d *Document) MarshalYAML() (interface{}, error) {
	return d.YAML(d.Root)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func (b *yamlBuilder) node(h Handle) (*yaml.Node, error) {
	if h == NilHandle {
		return scalar("!!null", "~"), nil
	}
	if y, ok := b.done[h]; ok {
		if y.Anchor == "" {
			y.Anchor = fmt.Sprintf("n%d", h)
		}
		return &yaml.Node{Kind: yaml.AliasNode, Alias: y, Value: y.Anchor}, nil
	}
	if b.open[h] {
		return scalar("!ref", fmt.Sprintf("#%d", h)), nil
	}

	n, err := b.nodes.Node(h)
	if err != nil {
		return nil, err
	}

	b.open[h] = true
	y := &yaml.Node{Kind: yaml.MappingNode}
	y.Content = append(y.Content, scalar("!!str", "$type"), scalar("!!str", n.Definition.String()))
	for i, f := range n.Definition.NestedFields {
		v := n.Values[i]
		if v == nil {
			continue
		}
		vy, err := b.value(v)
		if err != nil {
			return nil, err
		}
		y.Content = append(y.Content, scalar("!!str", f.Name), vy)
	}
	delete(b.open, h)
	b.done[h] = y
	return y, nil
}

func (b *yamlBuilder) value(v Value) (*yaml.Node, error) {
	switch v := v.(type) {
	case nil:
		return scalar("!!null", "~"), nil
	case Byte:
		return scalar("!!int", strconv.Itoa(int(v))), nil
	case Int:
		return scalar("!!int", strconv.Itoa(int(v))), nil
	case Float:
		return scalar("!!float", strconv.FormatFloat(float64(v), 'g', -1, 32)), nil
	case String:
		return scalar("!!str", string(v)), nil
	case Ref:
		return b.node(Handle(v))
	case Array:
		y := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, item := range v {
			if _, ok := item.(Ref); ok {
				y.Style = 0
			}
			iy, err := b.value(item)
			if err != nil {
				return nil, err
			}
			y.Content = append(y.Content, iy)
		}
		return y, nil
	default:
		return nil, errors.Errorf("unknown value %T", v)
	}
}

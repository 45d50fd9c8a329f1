package xmltree

import (
	"iter"
	"maps"
	"slices"

	"github.com/elliotchance/orderedmap/v2"
)

// treeSource exposes a consumed element. Child elements in the namespace are keyed
// by local name, all others by clark notation. Attributes are keyed by "@" followed
// by the attribute name. The primitive accessors read the text content.
type treeSource struct {
	TextSource

	namespace string
	children  *orderedmap.OrderedMap[string, []Node]
}

func newTreeSource(text string, children []Node, attrs Attrs, namespace string) treeSource {
	values := orderedmap.NewOrderedMap[string, []Node]()

	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		values.Set("@"+name, []Node{{Value: attrs[name]}})
	}

	for _, child := range children {
		key := child.Name.key([]string{namespace})
		existing, _ := values.Get(key)
		values.Set(key, append(existing, child))
	}

	return treeSource{
		TextSource: TextSource(text),
		namespace:  namespace,
		children:   values,
	}
}

func (t treeSource) Get(key string) (Source, error) {
	nodes, ok := t.children.Get(key)
	if !ok || !slices.ContainsFunc(nodes, hasContent) {
		return nil, ErrNoValue
	}

	return nodesSource{nodes: nodes, namespace: t.namespace}, nil
}

func (t treeSource) KeyValues() (iter.Seq2[Source, Source], error) {
	it := func(yield func(Source, Source) bool) {
		for el := t.children.Front(); el != nil; el = el.Next() {
			if el.Key[0] == '@' {
				continue
			}

			if !yield(TextSource(el.Key), nodesSource{nodes: el.Value, namespace: t.namespace}) {
				return
			}
		}
	}

	return it, nil
}

// nodesSource holds all children sharing one name. The primitive accessors, Get and
// KeyValues use the last child, Iter yields all of them.
type nodesSource struct {
	nodes     []Node
	namespace string
}

func (n nodesSource) last() Source {
	return sourceOf(n.nodes[len(n.nodes)-1], n.namespace)
}

func (n nodesSource) Bool() (bool, error) {
	return n.last().Bool()
}

func (n nodesSource) Int() (int64, error) {
	return n.last().Int()
}

func (n nodesSource) Uint() (uint64, error) {
	return n.last().Uint()
}

func (n nodesSource) Float() (float64, error) {
	return n.last().Float()
}

func (n nodesSource) String() (string, error) {
	return n.last().String()
}

func (n nodesSource) Get(key string) (Source, error) {
	return n.last().Get(key)
}

func (n nodesSource) KeyValues() (iter.Seq2[Source, Source], error) {
	return n.last().KeyValues()
}

func (n nodesSource) Iter() (iter.Seq[Source], error) {
	// a single child holding a list returned by an ElementParser
	if len(n.nodes) == 1 {
		if _, ok := n.nodes[0].Value.([]string); ok {
			return n.last().Iter()
		}
	}

	it := func(yield func(Source) bool) {
		for _, node := range n.nodes {
			if !yield(sourceOf(node, n.namespace)) {
				return
			}
		}
	}

	return it, nil
}

// textsSource is a list of strings, as returned by ElementList.
type textsSource struct {
	EmptySource
	values []string
}

func (t textsSource) Iter() (iter.Seq[Source], error) {
	it := func(yield func(Source) bool) {
		for _, value := range t.values {
			if !yield(TextSource(value)) {
				return
			}
		}
	}

	return it, nil
}

func sourceOf(node Node, namespace string) Source {
	switch value := node.Value.(type) {
	case nil:
		return newTreeSource("", nil, node.Attrs, namespace)
	case string:
		return newTreeSource(value, nil, node.Attrs, namespace)
	case []Node:
		return newTreeSource("", value, node.Attrs, namespace)
	case []string:
		return textsSource{values: value}
	case Source:
		return value
	default:
		return EmptySource{}
	}
}

func hasContent(node Node) bool {
	return node.Value != nil || len(node.Attrs) > 0
}

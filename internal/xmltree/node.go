// Package xmltree loads XML documents into a small generic element tree.
//
// The converter reads nmap reports through this tree rather than through
// fixed structs so that the presence of an element can be told apart from
// an element whose attributes are all empty.
package xmltree

import "encoding/xml"

// Node is one element of a parsed document.
type Node struct {
	name     string
	attrs    []xml.Attr
	text     string
	children []*Node
}

// Name returns the element tag, prefixed with "{uri}" when it is namespaced.
func (n *Node) Name() string {
	return n.name
}

// Attr returns the value of the named un-namespaced attribute, or def when it
// is absent.
func (n *Node) Attr(name, def string) string {
	for _, a := range n.attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value
		}
	}
	return def
}

// Text returns the character data that precedes the first child element.
func (n *Node) Text() string {
	return n.text
}

// Children returns all child elements in document order.
func (n *Node) Children() []*Node {
	return n.children
}

// Find returns the first direct child with the given tag, or nil.
func (n *Node) Find(tag string) *Node {
	for _, c := range n.children {
		if c.name == tag {
			return c
		}
	}
	return nil
}

// FindAll returns the direct children with the given tag in document order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.name == tag {
			out = append(out, c)
		}
	}
	return out
}

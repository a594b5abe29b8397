package doc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func newRoot() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

// ParseNodes parses HTML fragment in the body context. Returned nodes are
// detached and can be inserted with a transaction.
func ParseNodes(content string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(content), newRoot())
	if err != nil {
		return nil, fmt.Errorf("unable to parse html fragment: %w", err)
	}
	return nodes, nil
}

// ParseNode parses fragment which is expected to contain a single element.
func ParseNode(content string) (*html.Node, error) {
	nodes, err := ParseNodes(content)
	if err != nil {
		return nil, err
	}
	var found *html.Node
	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("fragment contains more than one element: %q", content)
		}
		found = n
	}
	if found == nil {
		return nil, fmt.Errorf("fragment does not contain element: %q", content)
	}
	return found, nil
}

// CloneNode makes a deep detached copy of the node.
func CloneNode(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(CloneNode(ch))
	}
	return c
}

// childAt finds the Nth child of a node.
// Note: html.Node's children are a linked list (FirstChild, NextSibling).
func childAt(parent *html.Node, index int) *html.Node {
	if index < 0 {
		return nil
	}
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if count == index {
			return c
		}
		count++
	}
	return nil
}

// childIndex returns the index of child within parent.
func childIndex(parent, child *html.Node) int {
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c == child {
			return count
		}
		count++
	}
	return -1
}

func childCount(parent *html.Node) int {
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

func nodeAt(root *html.Node, path NodePath) (*html.Node, error) {
	current := root
	for i, index := range path {
		child := childAt(current, index)
		if child == nil {
			return nil, fmt.Errorf("node not found at path %v (failed at index %d, step %d)", path, index, i)
		}
		current = child
	}
	return current, nil
}

func pathOf(root, target *html.Node) (NodePath, error) {
	var path NodePath
	for current := target; current != root; {
		parent := current.Parent
		if parent == nil {
			return nil, errors.New("target node is not a descendant of root")
		}
		index := childIndex(parent, current)
		if index == -1 {
			return nil, errors.New("integrity error: child not found in parent's list")
		}
		path = append(path, index)
		current = parent
	}
	// built backwards from target to root
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

func renderChildren(root *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// TextContent returns concatenated text of the node and its descendants.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

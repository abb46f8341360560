// collapse.go: tree reduction and traversal for extracted syntax trees.
package strex

import (
	"fmt"
	"io"
	"strings"
)

// Collapse removes structurally redundant nodes from the tree rooted at
// node, in place, and returns the root. A child is collapsible when it has
// no value and at most one grandchild; with tight set its type does not
// matter, otherwise only untyped children are collapsed. Collapsed
// children are replaced by their own children so the relative order of the
// remaining siblings never changes. Finally, a node left with exactly one
// value-less, type-less child adopts that child's children directly.
//
// The pass is idempotent: collapsing an already collapsed tree is a no-op.
func Collapse(node *SyntaxNode, tight bool) *SyntaxNode {
	i := 0
	for i < len(node.Children) {
		child := Collapse(node.Children[i], tight)

		collapsible := child.Value == "" && len(child.Children) <= 1
		if !tight {
			collapsible = collapsible && child.Type == ""
		}

		if collapsible {
			// Splice the grandchildren (already collapsed by the recursive
			// call) into this node in place of the child, and continue
			// after them.
			spliced := make([]*SyntaxNode, 0, len(node.Children)-1+len(child.Children))
			spliced = append(spliced, node.Children[:i]...)
			spliced = append(spliced, child.Children...)
			spliced = append(spliced, node.Children[i+1:]...)
			node.Children = spliced
			i += len(child.Children)
			continue
		}
		i++
	}

	if len(node.Children) == 1 {
		only := node.Children[0]
		if only.Type == "" && only.Value == "" {
			node.Children = only.Children
		}
	}
	return node
}

// Traverse walks the tree rooted at node in depth-first order, invoking fn
// for every node with the chain of its ancestors (closest parent last).
// The chain is only valid for the duration of the call. If fn returns
// false the node and its subtree are removed from the parent's child list;
// returning false for the root makes Traverse return nil.
func Traverse(node *SyntaxNode, fn func(n *SyntaxNode, ancestors []*SyntaxNode) bool) *SyntaxNode {
	if !traverse(node, nil, fn) {
		return nil
	}
	return node
}

func traverse(node *SyntaxNode, chain []*SyntaxNode, fn func(*SyntaxNode, []*SyntaxNode) bool) bool {
	if !fn(node, chain) {
		return false
	}
	chain = append(chain, node)
	kept := node.Children[:0]
	for _, child := range node.Children {
		if traverse(child, chain, fn) {
			kept = append(kept, child)
		}
	}
	node.Children = kept
	return true
}

// DumpTree writes an indented listing of the tree to w, one node per line.
func DumpTree(w io.Writer, node *SyntaxNode) {
	Traverse(node, func(n *SyntaxNode, ancestors []*SyntaxNode) bool {
		indent := strings.Repeat("  ", len(ancestors))
		if n.Value != "" {
			fmt.Fprintf(w, "%s(%s): %q\n", indent, typeLabel(n), n.Value)
		} else {
			fmt.Fprintf(w, "%s(%s)\n", indent, typeLabel(n))
		}
		return true
	})
}

func typeLabel(n *SyntaxNode) string {
	if n.Type == "" {
		return "-"
	}
	return n.Type
}

// Package code builds and walks the uniquely-decodable prefix code that
// binds keyboard output strings to chords. Code words are sequences of
// character indices; the tree's child arrays have one slot per index in
// the emission alphabet.
package code

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrAlphabetEmpty     = errors.New("alphabet must not be empty")
	ErrBadCaps           = errors.New("capacity caps must be positive")
	ErrCapacityExhausted = errors.New("builder frontier drained before reaching a capacity cap")
	ErrTruncatedInput    = errors.New("input ends in the middle of a code word")
	ErrBadIndex          = errors.New("character index outside tree alphabet")
	ErrNotFound          = errors.New("no node at code word")
)

// Node is one node of the prefix tree. A leaf has no children; an
// expanded node has exactly one child per alphabet index.
type Node struct {
	children []*Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Fanout returns the number of child slots (0 for a leaf).
func (n *Node) Fanout() int { return len(n.children) }

// Child returns the child at index idx.
func (n *Node) Child(idx int) (*Node, error) {
	if idx < 0 || idx >= len(n.children) {
		return nil, fmt.Errorf("%w: %d", ErrBadIndex, idx)
	}

	return n.children[idx], nil
}

// expand attaches fanout fresh leaf children.
func (n *Node) expand(fanout int) {
	n.children = make([]*Node, fanout)
	for i := range n.children {
		n.children[i] = &Node{}
	}
}

// locate walks from n along the code word and returns the node there.
func (n *Node) locate(word []int) (*Node, error) {
	cur := n

	for _, idx := range word {
		next, err := cur.Child(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, word)
		}

		cur = next
	}

	return cur, nil
}

// Tokenize splits a stream of character indices into complete code words
// by greedy longest-match walks from the root. The stream must end
// exactly at a leaf; ending mid-edge is ErrTruncatedInput.
func Tokenize(root *Node, idxs []int) ([][]int, error) {
	var words [][]int

	pos := 0

	for pos < len(idxs) {
		node := root
		start := pos

		for !node.IsLeaf() {
			if pos >= len(idxs) {
				return nil, ErrTruncatedInput
			}

			next, err := node.Child(idxs[pos])
			if err != nil {
				return nil, err
			}

			node = next
			pos++
		}

		if pos == start {
			// A leaf root matches the empty word forever; the tree is
			// malformed for decoding purposes.
			return nil, fmt.Errorf("%w: tree root is a leaf", ErrNotFound)
		}

		words = append(words, append([]int(nil), idxs[start:pos]...))
	}

	return words, nil
}

// nodeContents mirrors the persisted child array wrapper.
type nodeContents struct {
	Contents []*Node `json:"contents"`
}

type nodeJSON struct {
	Children *nodeContents `json:"children"`
}

// MarshalJSON encodes the node as {"children": null} for leaves and
// {"children": {"contents": [...]}} otherwise.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{}
	if !n.IsLeaf() {
		out.Children = &nodeContents{Contents: n.children}
	}

	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON

	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	if in.Children == nil {
		n.children = nil
		return nil
	}

	n.children = in.Children.Contents

	for i, c := range n.children {
		if c == nil {
			n.children[i] = &Node{}
		}
	}

	return nil
}

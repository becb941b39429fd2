// Package node implements the named boolean flags ("nodes") attached to a
// document, and their load/save contract with the document's stored record:
//
//	{"nodes": [{"name": "<lower-case key>", "flag": "1" | "0"}, ...]}
package node

import (
	"errors"
	"strings"
)

var (
	// ErrNilOwner is returned by the load constructor when no owning document is given.
	ErrNilOwner = errors.New("node: owner is nil (load constructor)")
	// ErrNoOwner is returned when a detached node is asked to persist.
	ErrNoOwner = errors.New("node: no owning document to save")
	// ErrMalformedRecord wraps every load failure caused by the stored shape.
	ErrMalformedRecord = errors.New("node: malformed record")
)

const (
	flagTrue  = "1"
	flagFalse = "0"
)

// Owner is the document a node belongs to. Save writes the document's
// current state to storage.
type Owner interface {
	Save() error
}

// Node is a single (key, flag) pair scoped to one owning document.
type Node struct {
	owner Owner
	key   string
	flag  bool
}

// New builds a node with a normalized key. The owner may be nil for a
// transient node; such a node cannot be saved until SetOwner is called.
func New(owner Owner, key string, flag bool) *Node {
	n := &Node{owner: owner}
	n.setKey(key)
	n.flag = flag
	return n
}

// NewForLoad builds an empty node to be populated by LoadFrom.
func NewForLoad(owner Owner) (*Node, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}
	return &Node{owner: owner}, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(key)
}

func (n *Node) setKey(key string) {
	n.key = normalizeKey(key)
}

// Key returns the lower-cased key.
func (n *Node) Key() string { return n.key }

// Flag returns the node's flag.
func (n *Node) Flag() bool { return n.flag }

// Owner returns the owning document, or nil for a transient node.
func (n *Node) Owner() Owner { return n.owner }

// SetOwner attaches a transient node to a document.
func (n *Node) SetOwner(o Owner) { n.owner = o }

// SetFlag updates the flag and, when persist is set, saves the owning document.
func (n *Node) SetFlag(flag, persist bool) error {
	n.flag = flag
	if persist {
		return n.Save()
	}
	return nil
}

// Save asks the owning document to save itself.
func (n *Node) Save() error {
	if n.owner == nil {
		return ErrNoOwner
	}
	return n.owner.Save()
}

// LoadFrom reads the name and flag fields of a stored sub-record. A flag is
// true only when stored as "1".
func (n *Node) LoadFrom(r Record) error {
	name, err := stringField(r, FieldName)
	if err != nil {
		return err
	}
	flag, err := stringField(r, FieldFlag)
	if err != nil {
		return err
	}
	n.setKey(name)
	// load assignment, never persisted
	_ = n.SetFlag(flag == flagTrue, false)
	return nil
}

// SaveTo writes the node into a sub-record.
func (n *Node) SaveTo(r Record) {
	r.Put(FieldName, n.key)
	if n.flag {
		r.Put(FieldFlag, flagTrue)
	} else {
		r.Put(FieldFlag, flagFalse)
	}
}

package node

import "fmt"

// Collection holds the nodes of one owning document keyed by normalized key.
// It is not safe for concurrent use.
type Collection struct {
	owner   Owner
	entries map[string]*Node
}

// NewCollection returns an empty collection bound to owner.
func NewCollection(owner Owner) *Collection {
	return &Collection{owner: owner, entries: make(map[string]*Node)}
}

// LoadNodes replaces the collection with the nodes stored under the record's
// "nodes" field. Any malformed entry fails the whole load and leaves the
// collection empty.
func (c *Collection) LoadNodes(r Record) error {
	clear(c.entries)

	raw, ok := r.Get(FieldNodes)
	if !ok || raw == nil {
		return fmt.Errorf("%w: missing %q", ErrMalformedRecord, FieldNodes)
	}
	seq, ok := asSequence(raw)
	if !ok {
		return fmt.Errorf("%w: %q is %T, want array", ErrMalformedRecord, FieldNodes, raw)
	}

	loaded := make(map[string]*Node, len(seq))
	for i, item := range seq {
		sub, ok := asRecord(item)
		if !ok {
			return fmt.Errorf("%w: %s[%d] is %T, want document", ErrMalformedRecord, FieldNodes, i, item)
		}
		n, err := NewForLoad(c.owner)
		if err != nil {
			return err
		}
		if err := n.LoadFrom(sub); err != nil {
			return fmt.Errorf("%s[%d]: %w", FieldNodes, i, err)
		}
		if _, dup := loaded[n.key]; !dup {
			loaded[n.key] = n
		}
	}
	for k, n := range loaded {
		c.entries[k] = n
	}
	return nil
}

// SaveNodes writes one sub-record per node under the record's "nodes" field,
// overwriting any previous value.
func (c *Collection) SaveNodes(r Record) {
	list := make([]any, 0, len(c.entries))
	for _, n := range c.entries {
		sub := BSONRecord{}
		n.SaveTo(sub)
		list = append(list, sub.M())
	}
	r.Put(FieldNodes, list)
}

// AddNode inserts n unless a node with the same key exists. It reports whether
// the node was inserted; an existing entry is never overwritten.
func (c *Collection) AddNode(n *Node, persist bool) (bool, error) {
	if c.HasNode(n) {
		return false, nil
	}
	c.entries[n.key] = n
	if persist {
		return true, c.save()
	}
	return true, nil
}

// RemoveNode deletes the entry with n's key, reporting whether one existed.
func (c *Collection) RemoveNode(n *Node, persist bool) (bool, error) {
	if !c.HasNode(n) {
		return false, nil
	}
	delete(c.entries, n.key)
	if persist {
		return true, c.save()
	}
	return true, nil
}

// HasNode reports whether a node with n's key is present.
func (c *Collection) HasNode(n *Node) bool {
	_, ok := c.entries[n.key]
	return ok
}

// HasKey reports whether key (in any case) is present.
func (c *Collection) HasKey(key string) bool {
	_, ok := c.entries[normalizeKey(key)]
	return ok
}

// Node returns the node stored under key (in any case).
func (c *Collection) Node(key string) (*Node, bool) {
	n, ok := c.entries[normalizeKey(key)]
	return n, ok
}

// Nodes returns the current nodes in no particular order. The slice is a
// snapshot; the nodes themselves are shared.
func (c *Collection) Nodes() []*Node {
	out := make([]*Node, 0, len(c.entries))
	for _, n := range c.entries {
		out = append(out, n)
	}
	return out
}

// Len returns the number of nodes.
func (c *Collection) Len() int { return len(c.entries) }

func (c *Collection) save() error {
	if c.owner == nil {
		return ErrNoOwner
	}
	return c.owner.Save()
}

package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogotex/nodedoc/internal/node"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record field names besides the node sub-structure.
const (
	FieldID        = "_id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// SaveTimeout bounds a single Save or Delete issued by a document.
var SaveTimeout = 10 * time.Second

// ErrDetached is returned when a document without a store is saved or deleted.
var ErrDetached = errors.New("document has no store")

// Store is the persistence a document writes itself through.
type Store interface {
	Save(ctx context.Context, rec bson.M) error
	Delete(ctx context.Context, id string) error
}

// Document is a persisted document carrying a collection of nodes. It is the
// owner of every node in its collection.
type Document struct {
	*node.Collection

	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	store Store
	ctx   context.Context
}

// New returns an empty document bound to store. The store may be nil for a
// document that is only serialized in memory.
func New(id string, store Store) *Document {
	d := &Document{ID: id, store: store, ctx: context.Background()}
	d.Collection = node.NewCollection(d)
	return d
}

// WithContext sets the parent context of the saves and deletes the document
// issues, e.g. the request it is being mutated for.
func (d *Document) WithContext(ctx context.Context) *Document {
	d.ctx = ctx
	return d
}

// Save writes the document's current state to its store.
func (d *Document) Save() error {
	if d.store == nil {
		return ErrDetached
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	ctx, cancel := context.WithTimeout(d.ctx, SaveTimeout)
	defer cancel()
	return d.store.Save(ctx, d.Record().M())
}

// Delete removes the document from its store.
func (d *Document) Delete() error {
	if d.store == nil {
		return ErrDetached
	}
	ctx, cancel := context.WithTimeout(d.ctx, SaveTimeout)
	defer cancel()
	return d.store.Delete(ctx, d.ID)
}

// Record serializes the document, nodes included.
func (d *Document) Record() node.BSONRecord {
	rec := node.BSONRecord{
		FieldID:        d.ID,
		FieldCreatedAt: d.CreatedAt,
		FieldUpdatedAt: d.UpdatedAt,
	}
	d.SaveNodes(rec)
	return rec
}

// Load replaces the document's state with rec.
func (d *Document) Load(rec node.Record) error {
	id, ok := rec.Get(FieldID)
	if !ok {
		return fmt.Errorf("%w: missing %q", node.ErrMalformedRecord, FieldID)
	}
	s, ok := id.(string)
	if !ok {
		return fmt.Errorf("%w: %q is %T, want string", node.ErrMalformedRecord, FieldID, id)
	}
	d.ID = s
	d.CreatedAt = timeField(rec, FieldCreatedAt)
	d.UpdatedAt = timeField(rec, FieldUpdatedAt)
	return d.LoadNodes(rec)
}

// timeField tolerates both in-process time.Time values and decoded BSON dates.
func timeField(rec node.Record, field string) time.Time {
	v, _ := rec.Get(field)
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case primitive.DateTime:
		return t.Time().UTC()
	}
	return time.Time{}
}

// Package models defines the curriculum tree the client edits: courses,
// sections, lessons, media references and the identity of each node.
package models

import "github.com/google/uuid"

// Identity is the tagged identity of a draft node. It is either Unsaved
// (local id only) or Persisted (local id plus backend id). The set of
// variants is closed; switch on the concrete type.
type Identity interface {
	LocalID() string
	identity()
}

// Unsaved is a node that has never been created on the backend.
type Unsaved struct {
	Local string
}

// Persisted is a node the backend knows about.
type Persisted struct {
	Local   string
	Backend string
}

func (u Unsaved) LocalID() string   { return u.Local }
func (p Persisted) LocalID() string { return p.Local }

func (Unsaved) identity()   {}
func (Persisted) identity() {}

// NewLocalID returns a fresh client-side identifier.
func NewLocalID() string {
	return uuid.NewString()
}

// NewUnsaved returns an identity with a fresh local id.
func NewUnsaved() Identity {
	return Unsaved{Local: NewLocalID()}
}

// BackendID returns the backend id of id, if it has one.
func BackendID(id Identity) (string, bool) {
	if p, ok := id.(Persisted); ok && p.Backend != "" {
		return p.Backend, true
	}
	return "", false
}

// NodeStatus is the lifecycle position of a section or lesson in the draft.
type NodeStatus int

const (
	// StatusDraft: never saved, editor open.
	StatusDraft NodeStatus = iota
	// StatusSaving: a create or update request is in flight.
	StatusSaving
	// StatusPersisted: matches the backend, editor closed.
	StatusPersisted
	// StatusEditing: persisted, editor open with possibly unsaved changes.
	StatusEditing
	// StatusDeleting: a delete is in flight.
	StatusDeleting
)

func (s NodeStatus) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusSaving:
		return "saving"
	case StatusPersisted:
		return "persisted"
	case StatusEditing:
		return "editing"
	case StatusDeleting:
		return "deleting"
	default:
		return "unknown"
	}
}

// IsEditing reports whether the node's editor is open.
func (s NodeStatus) IsEditing() bool {
	return s == StatusDraft || s == StatusEditing
}

// InFlight reports whether a backend request currently owns the node.
func (s NodeStatus) InFlight() bool {
	return s == StatusSaving || s == StatusDeleting
}

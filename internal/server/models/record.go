// Package models defines the values persisted by the repositories and
// passed between the service and transport layers.
package models

import "encoding/json"

// Record is one row of a syncable collection. Payload holds the
// collection-specific body as JSON.
type Record struct {
	Collection  string
	ContainerID string
	ID          string

	// Seq is assigned by the server from the container's sequence on every
	// accepted write. Delta cursors compare against it.
	Seq int64

	// UpdatedAt is the server-authoritative stamp in epoch milliseconds.
	UpdatedAt int64
	// ClientUpdatedAt is the stamp the client sent with its last accepted
	// write.
	ClientUpdatedAt int64

	Payload json.RawMessage
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Payload != nil {
		c.Payload = append(json.RawMessage(nil), r.Payload...)
	}
	return &c
}

// Container is a per-conversation scope inside a contained collection. Flat
// collections use a single container with an empty id.
type Container struct {
	Collection  string
	ContainerID string
	LastSeq     int64
	CreatedAt   int64
}

package services

import "github.com/Extra154/spectra-data-server/internal/server/models"

// Decision is the outcome of Resolve. Record is the version to store when
// Accepted, or the current server version when rejected.
type Decision struct {
	Accepted bool
	Record   *models.Record
}

// Resolve applies whole-record last-writer-wins. An incoming write loses only
// when the stored version is strictly newer than the client's stamp; an
// accepted write is stamped with now, never moving UpdatedAt backwards.
func Resolve(existing, incoming *models.Record, now int64) Decision {
	if existing == nil {
		rec := incoming.Clone()
		rec.UpdatedAt = now
		return Decision{Accepted: true, Record: rec}
	}

	if existing.UpdatedAt > incoming.ClientUpdatedAt {
		return Decision{Accepted: false, Record: existing.Clone()}
	}

	rec := incoming.Clone()
	rec.UpdatedAt = max(now, existing.UpdatedAt)
	return Decision{Accepted: true, Record: rec}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Extra154/spectra-data-server/internal/clock"
	"github.com/Extra154/spectra-data-server/internal/common"
	"github.com/Extra154/spectra-data-server/internal/logging"
	"github.com/Extra154/spectra-data-server/internal/server/config"
	"github.com/Extra154/spectra-data-server/internal/server/models"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/repomanager"
)

type PullResult struct {
	Records    []*models.Record
	ServerTime int64
	// Cursor is the seq of the last delivered record, or the request cursor
	// when nothing was delivered.
	Cursor  int64
	HasMore bool
}

type UpsertResult struct {
	Accepted bool
	// Record is the stored version when accepted and the winning server
	// version when rejected.
	Record *models.Record
}

type PushResult struct {
	// Created reports first contact: the container was created empty and
	// nothing from the batch was ingested.
	Created  bool
	Accepted int
	Results  []UpsertResult
}

// SyncService moves records between offline clients and the store.
type SyncService struct {
	repomanager repomanager.RepositoryManager
	clock       clock.Clock
	ids         clock.IDGenerator
	pullLimit   int
	logger      logging.Logger
}

func NewSyncService(rm repomanager.RepositoryManager, c clock.Clock, ids clock.IDGenerator,
	cfg *config.Config, logger logging.Logger) *SyncService {
	return &SyncService{
		repomanager: rm,
		clock:       c,
		ids:         ids,
		pullLimit:   cfg.PullLimit,
		logger:      logger.With("module", "sync"),
	}
}

// ParseCursor reads a delta cursor. Empty, malformed and negative cursors
// all mean "from the beginning"; ok is false when the input was unusable.
func ParseCursor(s string) (cursor int64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Pull returns records of one container whose seq is strictly greater than
// cursor, in seq order. limit 0 asks for everything, subject to the
// configured server cap.
func (s *SyncService) Pull(ctx context.Context, collectionName, containerID, cursor string, limit int) (*PullResult, error) {
	if _, err := lookupCollection(collectionName, containerID); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, common.NewValidationError("limit", "must not be negative")
	}

	from, ok := ParseCursor(cursor)
	if !ok {
		s.logger.Warn(ctx, "malformed cursor, pulling from the beginning",
			"collection", collectionName, "container", containerID, "cursor", cursor)
	}

	if s.pullLimit > 0 && (limit == 0 || limit > s.pullLimit) {
		limit = s.pullLimit
	}
	fetch := 0
	if limit > 0 {
		fetch = limit + 1
	}

	recs, err := s.repomanager.Repositories().Records().SelectAfter(ctx, collectionName, containerID, from, fetch)
	if err != nil {
		return nil, storeErr("pull", err)
	}

	res := &PullResult{ServerTime: clock.Millis(s.clock), Cursor: from}
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
		res.HasMore = true
	}
	res.Records = recs
	if n := len(recs); n > 0 {
		res.Cursor = recs[n-1].Seq
	}
	return res, nil
}

// Push ingests a batch. A container seen for the first time is created empty
// and the batch is not ingested; the client is expected to pull and push
// again. Each record is resolved in its own transaction, so an error stops
// the batch but keeps earlier results.
func (s *SyncService) Push(ctx context.Context, collectionName, containerID string, batch []*models.Record) (*PushResult, error) {
	coll, err := lookupCollection(collectionName, containerID)
	if err != nil {
		return nil, err
	}
	for i, rec := range batch {
		if err := s.prepare(coll, containerID, rec); err != nil {
			var verr *common.ValidationError
			if errors.As(err, &verr) {
				verr.Field = "records[" + strconv.Itoa(i) + "]." + verr.Field
			}
			return nil, err
		}
	}

	created, err := s.repomanager.Repositories().Containers().Create(ctx, collectionName, containerID, clock.Millis(s.clock))
	if err != nil {
		return nil, storeErr("push", err)
	}
	if created && coll.contained {
		s.logger.Info(ctx, "container created on first contact",
			"collection", collectionName, "container", containerID, "skipped", len(batch))
		return &PushResult{Created: true}, nil
	}

	res := &PushResult{Results: make([]UpsertResult, 0, len(batch))}
	for _, rec := range batch {
		r, err := s.write(ctx, rec)
		if err != nil {
			s.logger.Error(ctx, "push interrupted", "collection", collectionName,
				"container", containerID, "applied", len(res.Results), "error", err)
			return res, err
		}
		if r.Accepted {
			res.Accepted++
		}
		res.Results = append(res.Results, *r)
	}
	s.logger.Debug(ctx, "push applied", "collection", collectionName,
		"container", containerID, "accepted", res.Accepted, "rejected", len(res.Results)-res.Accepted)
	return res, nil
}

// Upsert writes a single record, creating its container when needed.
func (s *SyncService) Upsert(ctx context.Context, collectionName, containerID string, rec *models.Record) (*UpsertResult, error) {
	coll, err := lookupCollection(collectionName, containerID)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(coll, containerID, rec); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Repositories().Containers().Create(ctx, collectionName, containerID, clock.Millis(s.clock)); err != nil {
		return nil, storeErr("upsert", err)
	}
	return s.write(ctx, rec)
}

// Get reads one record. For contained collections an unknown container is
// reported as ErrorNotFound too.
func (s *SyncService) Get(ctx context.Context, collectionName, containerID, id string) (*models.Record, error) {
	coll, err := lookupCollection(collectionName, containerID)
	if err != nil {
		return nil, err
	}
	if err := validateID("id", id); err != nil {
		return nil, err
	}

	repos := s.repomanager.Repositories()
	if coll.contained {
		ok, err := repos.Containers().Exists(ctx, collectionName, containerID)
		if err != nil {
			return nil, storeErr("get", err)
		}
		if !ok {
			return nil, fmt.Errorf("container %s/%s: %w", collectionName, containerID, common.ErrorNotFound)
		}
	}
	rec, err := repos.Records().Get(ctx, collectionName, containerID, id)
	if err != nil {
		return nil, storeErr("get "+collectionName+"/"+id, err)
	}
	return rec, nil
}

// prepare validates rec and binds it to its collection and container.
func (s *SyncService) prepare(coll collection, containerID string, rec *models.Record) error {
	if rec == nil {
		return common.NewValidationError("record", "must not be null")
	}
	if rec.ID == "" {
		rec.ID = s.ids.New()
	}
	if err := validateID("id", rec.ID); err != nil {
		return err
	}
	if rec.ClientUpdatedAt < 0 {
		return common.NewValidationError("updatedAt", "must not be negative")
	}
	if err := coll.validate(rec.Payload); err != nil {
		return err
	}
	rec.Collection = coll.name
	rec.ContainerID = containerID
	return nil
}

// write resolves one record against the stored version under the container
// lock and, when accepted, stores it with the next container seq.
func (s *SyncService) write(ctx context.Context, incoming *models.Record) (*UpsertResult, error) {
	var result UpsertResult
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if _, err := r.Containers().Lock(ctx, incoming.Collection, incoming.ContainerID); err != nil {
			return err
		}

		existing, err := r.Records().Get(ctx, incoming.Collection, incoming.ContainerID, incoming.ID)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			existing = nil
		case err != nil:
			return err
		}

		d := Resolve(existing, incoming, clock.Millis(s.clock))
		if !d.Accepted {
			result = UpsertResult{Record: d.Record}
			return nil
		}

		seq, err := r.Containers().NextSeq(ctx, incoming.Collection, incoming.ContainerID)
		if err != nil {
			return err
		}
		d.Record.Seq = seq
		if err := r.Records().Upsert(ctx, d.Record); err != nil {
			return err
		}
		result = UpsertResult{Accepted: true, Record: d.Record}
		return nil
	})
	if err != nil {
		return nil, storeErr("write "+incoming.Collection+"/"+incoming.ID, err)
	}
	if !result.Accepted {
		s.logger.Debug(ctx, "stale write rejected", "collection", incoming.Collection,
			"id", incoming.ID, "server_updated_at", result.Record.UpdatedAt, "client_updated_at", incoming.ClientUpdatedAt)
	}
	return &result, nil
}

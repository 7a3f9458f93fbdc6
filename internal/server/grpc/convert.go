package grpc

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/Extra154/spectra-data-server/internal/api"
	"github.com/Extra154/spectra-data-server/internal/server/models"
)

func fromAPIRecord(r *api.Record) *models.Record {
	if r == nil {
		return nil
	}
	return &models.Record{
		ID:              r.ID,
		ClientUpdatedAt: r.ClientUpdatedAt,
		Payload:         append(json.RawMessage(nil), r.Payload...),
	}
}

func fromAPIRecords(in []*api.Record) []*models.Record {
	out := make([]*models.Record, len(in))
	for i, r := range in {
		out[i] = fromAPIRecord(r)
	}
	return out
}

func toAPIRecord(r *models.Record) *api.Record {
	if r == nil {
		return nil
	}
	return &api.Record{
		ID:        r.ID,
		Seq:       r.Seq,
		UpdatedAt: r.UpdatedAt,
		Payload:   r.Payload,
	}
}

func toAPIRecords(in []*models.Record) []*api.Record {
	out := make([]*api.Record, len(in))
	for i, r := range in {
		out[i] = toAPIRecord(r)
	}
	return out
}

func fromAPITarget(t api.TargetRef) models.TargetRef {
	return models.TargetRef{Kind: t.Kind, ID: t.ID}
}

func toAPICounters(c *models.Counters) *api.Counters {
	return &api.Counters{
		Target:      api.TargetRef{Kind: c.Target.Kind, ID: c.Target.ID},
		Likes:       c.Likes,
		Dislikes:    c.Dislikes,
		Views:       c.Views,
		Comments:    c.Comments,
		RatingCount: c.RatingCount,
		RatingAvg:   c.RatingAverage(),
	}
}

func toAPIComment(c *models.Comment) *api.Comment {
	return &api.Comment{
		ID:        c.ID,
		Seq:       c.Seq,
		UserID:    c.UserID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func toAPIStory(s *models.Story, ttl time.Duration) (*api.Story, error) {
	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return nil, err
	}
	return &api.Story{
		ID:        s.ID,
		OwnerID:   s.OwnerID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.CreatedAt + ttl.Milliseconds(),
		Payload:   payload,
		Viewers:   nonNil(s.Viewers),
	}, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func formatCursor(c int64) string {
	return strconv.FormatInt(c, 10)
}

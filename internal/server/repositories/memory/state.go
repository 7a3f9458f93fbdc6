package memory

import (
	"maps"

	"github.com/Extra154/spectra-data-server/internal/server/models"
)

type containerKey struct {
	collection  string
	containerID string
}

type recordKey struct {
	containerKey
	id string
}

type followKey struct {
	follower string
	followed string
}

type storyRow struct {
	story   models.Story
	viewers map[string]int64
}

type state struct {
	containers  map[containerKey]models.Container
	records     map[recordKey]*models.Record
	targets     map[models.TargetRef]models.Counters
	memberships map[models.Membership]int64
	comments    map[models.TargetRef][]models.Comment
	stories     map[string]*storyRow
	follows     map[followKey]int64
}

func newState() *state {
	return &state{
		containers:  map[containerKey]models.Container{},
		records:     map[recordKey]*models.Record{},
		targets:     map[models.TargetRef]models.Counters{},
		memberships: map[models.Membership]int64{},
		comments:    map[models.TargetRef][]models.Comment{},
		stories:     map[string]*storyRow{},
		follows:     map[followKey]int64{},
	}
}

func (s *state) clone() *state {
	c := &state{
		containers:  maps.Clone(s.containers),
		records:     make(map[recordKey]*models.Record, len(s.records)),
		targets:     maps.Clone(s.targets),
		memberships: maps.Clone(s.memberships),
		comments:    make(map[models.TargetRef][]models.Comment, len(s.comments)),
		stories:     make(map[string]*storyRow, len(s.stories)),
		follows:     maps.Clone(s.follows),
	}
	for k, r := range s.records {
		c.records[k] = r.Clone()
	}
	for k, list := range s.comments {
		c.comments[k] = append([]models.Comment(nil), list...)
	}
	for k, row := range s.stories {
		c.stories[k] = &storyRow{story: row.story, viewers: maps.Clone(row.viewers)}
	}
	return c
}

package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/Extra154/spectra-data-server/internal/common"
	"github.com/Extra154/spectra-data-server/internal/server/models"
)

type containersRepo struct{ v *view }

func (r containersRepo) Create(ctx context.Context, collection, containerID string, now int64) (bool, error) {
	var created bool
	err := r.v.with(ctx, func(st *state) error {
		key := containerKey{collection, containerID}
		if _, ok := st.containers[key]; ok {
			return nil
		}
		st.containers[key] = models.Container{Collection: collection, ContainerID: containerID, CreatedAt: now}
		created = true
		return nil
	})
	return created, err
}

func (r containersRepo) Lock(ctx context.Context, collection, containerID string) (int64, error) {
	var seq int64
	err := r.v.with(ctx, func(st *state) error {
		c, ok := st.containers[containerKey{collection, containerID}]
		if !ok {
			return common.ErrorNotFound
		}
		seq = c.LastSeq
		return nil
	})
	return seq, err
}

func (r containersRepo) NextSeq(ctx context.Context, collection, containerID string) (int64, error) {
	var seq int64
	err := r.v.with(ctx, func(st *state) error {
		key := containerKey{collection, containerID}
		c, ok := st.containers[key]
		if !ok {
			return common.ErrorNotFound
		}
		c.LastSeq++
		st.containers[key] = c
		seq = c.LastSeq
		return nil
	})
	return seq, err
}

func (r containersRepo) Exists(ctx context.Context, collection, containerID string) (bool, error) {
	var ok bool
	err := r.v.with(ctx, func(st *state) error {
		_, ok = st.containers[containerKey{collection, containerID}]
		return nil
	})
	return ok, err
}

type recordsRepo struct{ v *view }

func (r recordsRepo) Get(ctx context.Context, collection, containerID, id string) (*models.Record, error) {
	var rec *models.Record
	err := r.v.with(ctx, func(st *state) error {
		found, ok := st.records[recordKey{containerKey{collection, containerID}, id}]
		if !ok {
			return common.ErrorNotFound
		}
		rec = found.Clone()
		return nil
	})
	return rec, err
}

func (r recordsRepo) Upsert(ctx context.Context, rec *models.Record) error {
	return r.v.with(ctx, func(st *state) error {
		ck := containerKey{rec.Collection, rec.ContainerID}
		if _, ok := st.containers[ck]; !ok {
			return fmt.Errorf("container %s/%s does not exist", rec.Collection, rec.ContainerID)
		}
		for k, other := range st.records {
			if k.containerKey == ck && k.id != rec.ID && other.Seq == rec.Seq {
				return fmt.Errorf("duplicate seq %d in %s/%s", rec.Seq, rec.Collection, rec.ContainerID)
			}
		}
		st.records[recordKey{ck, rec.ID}] = rec.Clone()
		return nil
	})
}

func (r recordsRepo) SelectAfter(ctx context.Context, collection, containerID string, cursor int64, limit int) ([]*models.Record, error) {
	var result []*models.Record
	err := r.v.with(ctx, func(st *state) error {
		ck := containerKey{collection, containerID}
		for k, rec := range st.records {
			if k.containerKey == ck && rec.Seq > cursor {
				result = append(result, rec.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type countersRepo struct{ v *view }

func (r countersRepo) Ensure(ctx context.Context, target models.TargetRef, now int64) error {
	return r.v.with(ctx, func(st *state) error {
		if _, ok := st.targets[target]; !ok {
			st.targets[target] = models.Counters{Target: target, CreatedAt: now}
		}
		return nil
	})
}

func (r countersRepo) Lock(ctx context.Context, target models.TargetRef) (*models.Counters, error) {
	return r.Get(ctx, target)
}

func (r countersRepo) Get(ctx context.Context, target models.TargetRef) (*models.Counters, error) {
	var c models.Counters
	err := r.v.with(ctx, func(st *state) error {
		found, ok := st.targets[target]
		if !ok {
			return common.ErrorNotFound
		}
		c = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r countersRepo) Increment(ctx context.Context, target models.TargetRef, counter models.Counter, delta int64) (int64, error) {
	var value int64
	err := r.v.with(ctx, func(st *state) error {
		c, ok := st.targets[target]
		if !ok {
			return common.ErrorNotFound
		}
		switch counter {
		case models.CounterLikes, models.CounterDislikes, models.CounterViews, models.CounterComments:
		default:
			return fmt.Errorf("unknown counter %q", counter)
		}
		value = c.Add(counter, delta)
		st.targets[target] = c
		return nil
	})
	return value, err
}

func (r countersRepo) AddRating(ctx context.Context, target models.TargetRef, score int64) (*models.Counters, error) {
	var out models.Counters
	err := r.v.with(ctx, func(st *state) error {
		c, ok := st.targets[target]
		if !ok {
			return common.ErrorNotFound
		}
		c.RatingSum += score
		c.RatingCount++
		st.targets[target] = c
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r countersRepo) Delete(ctx context.Context, target models.TargetRef) (bool, error) {
	var deleted bool
	err := r.v.with(ctx, func(st *state) error {
		if _, ok := st.targets[target]; !ok {
			return nil
		}
		delete(st.targets, target)
		for m := range st.memberships {
			if m.Target == target {
				delete(st.memberships, m)
			}
		}
		delete(st.comments, target)
		deleted = true
		return nil
	})
	return deleted, err
}

func (r countersRepo) Drift(ctx context.Context) ([]models.CounterDrift, error) {
	var result []models.CounterDrift
	err := r.v.with(ctx, func(st *state) error {
		actual := map[models.TargetRef]map[models.MembershipKind]int64{}
		for m := range st.memberships {
			if actual[m.Target] == nil {
				actual[m.Target] = map[models.MembershipKind]int64{}
			}
			actual[m.Target][m.Kind]++
		}
		for target, c := range st.targets {
			for _, kind := range []models.MembershipKind{models.MembershipDislike, models.MembershipLike, models.MembershipView} {
				counter := kind.Counter()
				if got := actual[target][kind]; got != c.Get(counter) {
					result = append(result, models.CounterDrift{Target: target, Counter: counter, Stored: c.Get(counter), Actual: got})
				}
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Target.Kind != b.Target.Kind {
			return a.Target.Kind < b.Target.Kind
		}
		if a.Target.ID != b.Target.ID {
			return a.Target.ID < b.Target.ID
		}
		return a.Counter < b.Counter
	})
	return result, err
}

// SetCounter overwrites one counter without touching memberships. Tests use
// it to simulate drift.
func (m *Manager) SetCounter(target models.TargetRef, counter models.Counter, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.state.targets[target]
	c.Target = target
	c.Add(counter, value-c.Get(counter))
	m.state.targets[target] = c
}

type membershipsRepo struct{ v *view }

func (r membershipsRepo) Insert(ctx context.Context, m models.Membership, now int64) (bool, error) {
	var inserted bool
	err := r.v.with(ctx, func(st *state) error {
		if _, ok := st.targets[m.Target]; !ok {
			return fmt.Errorf("target %s does not exist", m.Target)
		}
		if _, ok := st.memberships[m]; ok {
			return nil
		}
		st.memberships[m] = now
		inserted = true
		return nil
	})
	return inserted, err
}

func (r membershipsRepo) Delete(ctx context.Context, m models.Membership) (bool, error) {
	var deleted bool
	err := r.v.with(ctx, func(st *state) error {
		if _, ok := st.memberships[m]; ok {
			delete(st.memberships, m)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

type commentsRepo struct{ v *view }

func (r commentsRepo) Insert(ctx context.Context, c *models.Comment) error {
	return r.v.with(ctx, func(st *state) error {
		if _, ok := st.targets[c.Target]; !ok {
			return fmt.Errorf("target %s does not exist", c.Target)
		}
		for _, existing := range st.comments[c.Target] {
			if existing.Seq == c.Seq {
				return fmt.Errorf("duplicate comment seq %d on %s", c.Seq, c.Target)
			}
		}
		st.comments[c.Target] = append(st.comments[c.Target], *c)
		return nil
	})
}

func (r commentsRepo) SelectAfter(ctx context.Context, target models.TargetRef, cursor int64, limit int) ([]*models.Comment, error) {
	var result []*models.Comment
	err := r.v.with(ctx, func(st *state) error {
		for _, c := range st.comments[target] {
			c := c
			if c.Seq > cursor {
				result = append(result, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type storiesRepo struct{ v *view }

func (r storiesRepo) Insert(ctx context.Context, s *models.Story) (bool, error) {
	var inserted bool
	err := r.v.with(ctx, func(st *state) error {
		if _, ok := st.stories[s.ID]; ok {
			return nil
		}
		row := &storyRow{story: *s, viewers: map[string]int64{}}
		row.story.Viewers = nil
		st.stories[s.ID] = row
		inserted = true
		return nil
	})
	return inserted, err
}

func (r storiesRepo) GetForUpdate(ctx context.Context, id string) (*models.Story, error) {
	var s models.Story
	err := r.v.with(ctx, func(st *state) error {
		row, ok := st.stories[id]
		if !ok {
			return common.ErrorNotFound
		}
		s = row.story
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r storiesRepo) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.v.with(ctx, func(st *state) error {
		if _, ok := st.stories[id]; ok {
			delete(st.stories, id)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

func (r storiesRepo) AddViewer(ctx context.Context, id, viewerID string, now int64) error {
	return r.v.with(ctx, func(st *state) error {
		row, ok := st.stories[id]
		if !ok {
			return fmt.Errorf("story %s does not exist", id)
		}
		if _, seen := row.viewers[viewerID]; !seen {
			row.viewers[viewerID] = now
		}
		return nil
	})
}

func (r storiesRepo) Viewers(ctx context.Context, id string) ([]string, error) {
	viewers := []string{}
	err := r.v.with(ctx, func(st *state) error {
		if row, ok := st.stories[id]; ok {
			viewers = sortedViewers(row)
		}
		return nil
	})
	return viewers, err
}

func sortedViewers(row *storyRow) []string {
	out := make([]string, 0, len(row.viewers))
	for v := range row.viewers {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (r storiesRepo) SelectActive(ctx context.Context, cutoff int64) ([]*models.Story, error) {
	var result []*models.Story
	err := r.v.with(ctx, func(st *state) error {
		for _, row := range st.stories {
			if row.story.CreatedAt < cutoff {
				continue
			}
			s := row.story
			s.Viewers = sortedViewers(row)
			result = append(result, &s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r storiesRepo) DeleteExpired(ctx context.Context, cutoff int64) ([]string, error) {
	ids := []string{}
	err := r.v.with(ctx, func(st *state) error {
		for id, row := range st.stories {
			if row.story.CreatedAt < cutoff {
				delete(st.stories, id)
				ids = append(ids, id)
			}
		}
		return nil
	})
	slices.Sort(ids)
	return ids, err
}

type followsRepo struct{ v *view }

func (r followsRepo) Insert(ctx context.Context, f models.Follow) (bool, error) {
	var inserted bool
	err := r.v.with(ctx, func(st *state) error {
		key := followKey{f.FollowerID, f.FollowedID}
		if _, ok := st.follows[key]; ok {
			return nil
		}
		st.follows[key] = f.FollowedAt
		inserted = true
		return nil
	})
	return inserted, err
}

func (r followsRepo) Delete(ctx context.Context, followerID, followedID string) (bool, error) {
	var deleted bool
	err := r.v.with(ctx, func(st *state) error {
		key := followKey{followerID, followedID}
		if _, ok := st.follows[key]; ok {
			delete(st.follows, key)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

func (r followsRepo) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	var ok bool
	err := r.v.with(ctx, func(st *state) error {
		_, ok = st.follows[followKey{followerID, followedID}]
		return nil
	})
	return ok, err
}

func (r followsRepo) Following(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := r.v.with(ctx, func(st *state) error {
		for k := range st.follows {
			if k.follower == followerID {
				ids = append(ids, k.followed)
			}
		}
		return nil
	})
	slices.Sort(ids)
	return ids, err
}

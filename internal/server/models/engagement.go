package models

import "fmt"

// Target kinds that can carry engagement.
const (
	TargetPost     = "posts"
	TargetProvider = "providers"
	TargetStory    = "stories"
)

// TargetRef identifies an engagement target.
type TargetRef struct {
	Kind string
	ID   string
}

func (t TargetRef) String() string { return t.Kind + "/" + t.ID }

// MembershipKind is the relation a user holds with a target.
type MembershipKind string

const (
	MembershipLike    MembershipKind = "like"
	MembershipDislike MembershipKind = "dislike"
	MembershipView    MembershipKind = "view"
)

func ParseMembershipKind(s string) (MembershipKind, error) {
	switch k := MembershipKind(s); k {
	case MembershipLike, MembershipDislike, MembershipView:
		return k, nil
	default:
		return "", fmt.Errorf("unknown membership kind %q", s)
	}
}

// Counter names a denormalized counter column of a target.
type Counter string

const (
	CounterLikes    Counter = "likes"
	CounterDislikes Counter = "dislikes"
	CounterViews    Counter = "views"
	CounterComments Counter = "comments"
)

// Counter returns the counter column a membership of kind k maintains.
func (k MembershipKind) Counter() Counter {
	switch k {
	case MembershipLike:
		return CounterLikes
	case MembershipDislike:
		return CounterDislikes
	default:
		return CounterViews
	}
}

// Counters is the denormalized engagement state of a target.
type Counters struct {
	Target      TargetRef
	Likes       int64
	Dislikes    int64
	Views       int64
	Comments    int64
	RatingSum   int64
	RatingCount int64
	CreatedAt   int64
}

// Get reads the named counter.
func (c *Counters) Get(name Counter) int64 {
	switch name {
	case CounterLikes:
		return c.Likes
	case CounterDislikes:
		return c.Dislikes
	case CounterViews:
		return c.Views
	case CounterComments:
		return c.Comments
	default:
		return 0
	}
}

// Add changes the named counter by delta and returns the new value.
func (c *Counters) Add(name Counter, delta int64) int64 {
	switch name {
	case CounterLikes:
		c.Likes += delta
		return c.Likes
	case CounterDislikes:
		c.Dislikes += delta
		return c.Dislikes
	case CounterViews:
		c.Views += delta
		return c.Views
	case CounterComments:
		c.Comments += delta
		return c.Comments
	default:
		return 0
	}
}

// RatingAverage is RatingSum/RatingCount, or 0 when nobody rated.
func (c *Counters) RatingAverage() float64 {
	if c.RatingCount == 0 {
		return 0
	}
	return float64(c.RatingSum) / float64(c.RatingCount)
}

// Membership is the presence of a (user, kind) pair on a target.
type Membership struct {
	Target TargetRef
	Kind   MembershipKind
	UserID string
}

// Comment is an append-only note on a target. Seq is per target.
type Comment struct {
	Target    TargetRef
	Seq       int64
	ID        string
	UserID    string
	Text      string
	CreatedAt int64
}

// CounterDrift reports a counter that disagrees with its membership rows.
type CounterDrift struct {
	Target  TargetRef
	Counter Counter
	Stored  int64
	Actual  int64
}

package models

// Follow is a directed edge of the social graph.
type Follow struct {
	FollowerID string
	FollowedID string
	FollowedAt int64
}

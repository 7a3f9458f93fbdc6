package api

import "encoding/json"

// Record is a synced record. Timestamps are Unix milliseconds.
type Record struct {
	ID  string `json:"id"`
	Seq int64  `json:"seq,omitempty"`
	// UpdatedAt is the server stamp of the stored version.
	UpdatedAt int64 `json:"updatedAt,omitempty"`
	// ClientUpdatedAt is the server stamp the client last saw for this
	// record, or 0 for a record the client created offline.
	ClientUpdatedAt int64           `json:"clientUpdatedAt,omitempty"`
	Payload         json.RawMessage `json:"payload"`
}

type PullDeltaRequest struct {
	Collection  string `json:"collection"`
	ContainerID string `json:"containerId,omitempty"`
	Cursor      string `json:"cursor,omitempty"`
	Limit       int32  `json:"limit,omitempty"`
}

type PullDeltaResponse struct {
	Records    []*Record `json:"records"`
	ServerTime int64     `json:"serverTime"`
	Cursor     string    `json:"cursor"`
	HasMore    bool      `json:"hasMore"`
}

type PushBatchRequest struct {
	Collection  string    `json:"collection"`
	ContainerID string    `json:"containerId,omitempty"`
	Records     []*Record `json:"records"`
}

type UpsertOutcome struct {
	Accepted bool    `json:"accepted"`
	Record   *Record `json:"record"`
}

type PushBatchResponse struct {
	// Created is set when the container did not exist; the batch was not
	// ingested and should be pushed again after a pull.
	Created  bool             `json:"created"`
	Accepted int32            `json:"accepted"`
	Results  []*UpsertOutcome `json:"results"`
}

type UpsertRecordRequest struct {
	Collection  string  `json:"collection"`
	ContainerID string  `json:"containerId,omitempty"`
	Record      *Record `json:"record"`
}

type UpsertRecordResponse = UpsertOutcome

type GetRecordRequest struct {
	Collection  string `json:"collection"`
	ContainerID string `json:"containerId,omitempty"`
	ID          string `json:"id"`
}

type TargetRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type TargetRequest struct {
	Target TargetRef `json:"target"`
}

type ToggleRequest struct {
	Target TargetRef `json:"target"`
	UserID string    `json:"userId"`
	// Kind is one of "like", "dislike" or "view".
	Kind string `json:"kind"`
}

type ToggleResponse struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

type DeleteTargetResponse struct {
	Deleted bool `json:"deleted"`
}

type Counters struct {
	Target      TargetRef `json:"target"`
	Likes       int64     `json:"likes"`
	Dislikes    int64     `json:"dislikes"`
	Views       int64     `json:"views"`
	Comments    int64     `json:"comments"`
	RatingCount int64     `json:"ratingCount"`
	RatingAvg   float64   `json:"ratingAvg"`
}

type AddCommentRequest struct {
	Target TargetRef `json:"target"`
	UserID string    `json:"userId"`
	Text   string    `json:"text"`
}

type Comment struct {
	ID        string `json:"id"`
	Seq       int64  `json:"seq"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

type ListCommentsRequest struct {
	Target TargetRef `json:"target"`
	Cursor string    `json:"cursor,omitempty"`
	Limit  int32     `json:"limit,omitempty"`
}

type ListCommentsResponse struct {
	Comments []*Comment `json:"comments"`
	Cursor   string     `json:"cursor"`
	HasMore  bool       `json:"hasMore"`
}

type RateRequest struct {
	Target TargetRef `json:"target"`
	Score  int32     `json:"score"`
}

type CreateStoryRequest struct {
	// ID may be empty; the server then assigns one.
	ID      string          `json:"id,omitempty"`
	OwnerID string          `json:"ownerId"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Story struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	CreatedAt int64           `json:"createdAt"`
	ExpiresAt int64           `json:"expiresAt"`
	Payload   json.RawMessage `json:"payload"`
	Viewers   []string        `json:"viewers"`
}

type ViewStoryRequest struct {
	ID       string `json:"id"`
	ViewerID string `json:"viewerId"`
}

type ViewStoryResponse struct {
	Viewers []string `json:"viewers"`
	// Expired reports that the story had outlived its TTL and was removed.
	Expired bool `json:"expired"`
}

type ListStoriesRequest struct{}

type ListStoriesResponse struct {
	Stories []*Story `json:"stories"`
}

type DeleteStoryRequest struct {
	ID string `json:"id"`
}

type DeleteStoryResponse struct {
	Deleted bool `json:"deleted"`
}

type FollowRequest struct {
	FollowerID string `json:"followerId"`
	FollowedID string `json:"followedId"`
}

type FollowResponse struct {
	Changed bool `json:"changed"`
}

type IsFollowingResponse struct {
	Following bool `json:"following"`
}

type UserRequest struct {
	UserID string `json:"userId"`
}

type UsersResponse struct {
	UserIDs []string `json:"userIds"`
}

type PingRequest struct{}

type PingResponse struct {
	Status     string `json:"status"`
	ServerTime int64  `json:"serverTime"`
}

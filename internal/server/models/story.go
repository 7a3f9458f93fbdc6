package models

// StoryPayload is the client-supplied body of a story.
type StoryPayload struct {
	Username    string `json:"username,omitempty"`
	ProfPic     string `json:"profPic,omitempty"`
	VideoPosted string `json:"videoPosted,omitempty"`
	ImagePosted string `json:"imagePosted,omitempty"`
	SongPosted  string `json:"songPosted,omitempty"`
	SongPlayed  string `json:"songPlayed,omitempty"`
	Caption     string `json:"caption,omitempty"`
}

// Story is an ephemeral post. Viewers is sorted and has no duplicates.
type Story struct {
	ID        string
	OwnerID   string
	CreatedAt int64
	Payload   StoryPayload
	Viewers   []string
}

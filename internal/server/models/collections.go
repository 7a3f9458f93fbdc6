package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	CollectionChats     = "chats"
	CollectionProviders = "providers"
)

// ChatMessage is the payload of a chats record. Records live in a container
// named after the conversation.
type ChatMessage struct {
	SenderName      string `json:"senderName"`
	RecName         string `json:"recName"`
	Username        string `json:"username,omitempty"`
	SentText        string `json:"sentText,omitempty"`
	ReceivedText    string `json:"receivedText,omitempty"`
	TimeSent        string `json:"timeSent,omitempty"`
	TimeReceived    string `json:"timeReceived,omitempty"`
	ImageSent       string `json:"imageSent,omitempty"`
	ImageRec        string `json:"imageRec,omitempty"`
	VideoSent       string `json:"videoSent,omitempty"`
	VideoRec        string `json:"videoRec,omitempty"`
	AudioSent       string `json:"audioSent,omitempty"`
	AudioRec        string `json:"audioRec,omitempty"`
	SenderPic       string `json:"senderPic,omitempty"`
	RecProfPic      string `json:"recProfPic,omitempty"`
	EventSend       string `json:"eventSend,omitempty"`
	EventRec        string `json:"eventRec,omitempty"`
	DescriptionSend string `json:"descriptionSend,omitempty"`
	DescriptionRec  string `json:"descriptionRec,omitempty"`
	EventDateSent   string `json:"eventDateSent,omitempty"`
	EventDateRec    string `json:"eventDateRec,omitempty"`
	EventTmSend     string `json:"eventTmSend,omitempty"`
	EventTmRec      string `json:"eventTmRec,omitempty"`
}

func (m *ChatMessage) Validate() error {
	if m.SenderName == "" {
		return errors.New("senderName is required")
	}
	if m.RecName == "" {
		return errors.New("recName is required")
	}
	return nil
}

// ServiceProvider is the payload of a providers record. Rating, likes and
// view counts are server-owned and live on the engagement target instead.
type ServiceProvider struct {
	Username         string   `json:"username"`
	BusinessName     string   `json:"businessName,omitempty"`
	Bio              string   `json:"bio,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	Email            string   `json:"email,omitempty"`
	Location         string   `json:"location,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	ServicesJSON     string   `json:"servicesJson,omitempty"`
	PriceRange       string   `json:"priceRange,omitempty"`
	AvailabilityJSON string   `json:"availabilityJson,omitempty"`
	CompletedJobs    int64    `json:"completedJobs,omitempty"`
	ProfileImagePath string   `json:"profileImagePath,omitempty"`
	CoverImagePath   string   `json:"coverImagePath,omitempty"`
	IsVerified       bool     `json:"isVerified,omitempty"`
	IsActive         bool     `json:"isActive,omitempty"`
}

func (p *ServiceProvider) Validate() error {
	if p.Username == "" {
		return errors.New("username is required")
	}
	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		return fmt.Errorf("latitude %v out of range", *p.Latitude)
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		return fmt.Errorf("longitude %v out of range", *p.Longitude)
	}
	if p.CompletedJobs < 0 {
		return errors.New("completedJobs must not be negative")
	}
	return nil
}

// DecodeStrict unmarshals a single JSON object into v and fails on unknown
// fields or trailing data.
func DecodeStrict(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("payload is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after payload")
	}
	return nil
}

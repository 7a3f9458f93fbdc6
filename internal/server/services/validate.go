package services

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Extra154/spectra-data-server/internal/common"
	"github.com/Extra154/spectra-data-server/internal/server/models"
)

const (
	maxIDLength      = 128
	maxCommentLength = 2000
	maxCaptionLength = 2200
)

// validateID checks a path segment: non-empty, bounded and free of '/'.
func validateID(field, id string) error {
	switch {
	case id == "":
		return common.NewValidationError(field, "must not be empty")
	case len(id) > maxIDLength:
		return common.NewValidationError(field, "too long")
	case strings.Contains(id, "/"):
		return common.NewValidationError(field, "must not contain '/'")
	}
	return validateText(field, id)
}

// validateText rejects strings PostgreSQL refuses to store in a TEXT or
// JSONB column.
func validateText(field, s string) error {
	switch {
	case !utf8.ValidString(s):
		return common.NewValidationError(field, "must be valid UTF-8")
	case strings.ContainsRune(s, 0):
		return common.NewValidationError(field, "must not contain NUL characters")
	}
	return nil
}

func validateStoryPayload(p models.StoryPayload) error {
	fields := []struct{ name, value string }{
		{"payload.username", p.Username},
		{"payload.profPic", p.ProfPic},
		{"payload.videoPosted", p.VideoPosted},
		{"payload.imagePosted", p.ImagePosted},
		{"payload.songPosted", p.SongPosted},
		{"payload.songPlayed", p.SongPlayed},
		{"payload.caption", p.Caption},
	}
	for _, f := range fields {
		if err := validateText(f.name, f.value); err != nil {
			return err
		}
	}
	if utf8.RuneCountInString(p.Caption) > maxCaptionLength {
		return common.NewValidationError("payload.caption", "too long")
	}
	return nil
}

// validateRawText checks raw JSON bytes and every key and string value they
// decode to.
func validateRawText(raw json.RawMessage) error {
	if !utf8.Valid(raw) {
		return errors.New("must be valid UTF-8")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if containsNUL(v) {
		return errors.New("must not contain NUL characters")
	}
	return nil
}

func containsNUL(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.ContainsRune(t, 0)
	case []any:
		for _, e := range t {
			if containsNUL(e) {
				return true
			}
		}
	case map[string]any:
		for k, e := range t {
			if strings.ContainsRune(k, 0) || containsNUL(e) {
				return true
			}
		}
	}
	return false
}

var targetKinds = map[string]bool{
	models.TargetPost:     true,
	models.TargetProvider: true,
	models.TargetStory:    true,
}

func validateTarget(target models.TargetRef) error {
	if !targetKinds[target.Kind] {
		return common.NewValidationError("target.kind", "unknown target kind "+target.Kind)
	}
	return validateID("target.id", target.ID)
}

// collection describes one syncable collection.
type collection struct {
	name string
	// contained collections scope records by container; flat ones use "".
	contained bool
	validate  func(payload json.RawMessage) error
}

type validator interface {
	Validate() error
}

// payloadValidator decodes a payload strictly into T and runs its checks.
func payloadValidator[T any, PT interface {
	*T
	validator
}]() func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var v T
		if err := models.DecodeStrict(raw, &v); err != nil {
			return common.NewValidationError("payload", err.Error())
		}
		if err := validateRawText(raw); err != nil {
			return common.NewValidationError("payload", err.Error())
		}
		if err := PT(&v).Validate(); err != nil {
			return common.NewValidationError("payload", err.Error())
		}
		return nil
	}
}

var collections = map[string]collection{
	models.CollectionChats: {
		name:      models.CollectionChats,
		contained: true,
		validate:  payloadValidator[models.ChatMessage](),
	},
	models.CollectionProviders: {
		name:     models.CollectionProviders,
		validate: payloadValidator[models.ServiceProvider](),
	},
}

// lookupCollection resolves name and checks the container id against it.
func lookupCollection(name, containerID string) (collection, error) {
	c, ok := collections[name]
	if !ok {
		return collection{}, common.NewValidationError("collection", "unknown collection "+name)
	}
	if c.contained {
		if err := validateID("containerId", containerID); err != nil {
			return collection{}, err
		}
	} else if containerID != "" {
		return collection{}, common.NewValidationError("containerId", name+" has no containers")
	}
	return c, nil
}

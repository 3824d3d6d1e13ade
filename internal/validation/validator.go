package validation

import (
	"net/url"
	"regexp"
	"strings"

	"studykit/internal/domain"
	"studykit/internal/util"
)

var (
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	itemIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateVideoURL checks that raw points at a YouTube video and returns its video id.
func (v *Validator) ValidateVideoURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.NewValidationError("video_url is required").WithContext("field", "video_url")
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", invalidVideoURL(raw)
	}

	videoID := youTubeVideoID(u)
	if !videoIDPattern.MatchString(videoID) {
		return "", invalidVideoURL(raw)
	}
	return videoID, nil
}

// ValidateSessionID checks the format of a session identifier.
func (v *Validator) ValidateSessionID(id string) error {
	if !util.IsULID(id) {
		return domain.NewInvalidInputError("session id is not a valid ULID").WithContext("session_id", id)
	}
	return nil
}

// ValidateJobID checks the format of a job identifier.
func (v *Validator) ValidateJobID(id string) error {
	if !util.IsULID(id) {
		return domain.NewInvalidInputError("job id is not a valid ULID").WithContext("job_id", id)
	}
	return nil
}

// ValidateItemID checks the format of an exportable item identifier.
func (v *Validator) ValidateItemID(id string) error {
	if !itemIDPattern.MatchString(id) {
		return domain.NewInvalidInputError("item id has an invalid format").WithContext("item_id", id)
	}
	return nil
}

func youTubeVideoID(u *url.URL) string {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.Trim(u.Path, "/")

	switch host {
	case "youtu.be":
		return firstSegment(path)
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if path == "watch" {
			return u.Query().Get("v")
		}
		for _, prefix := range []string{"shorts/", "embed/", "live/"} {
			if strings.HasPrefix(path, prefix) {
				return firstSegment(strings.TrimPrefix(path, prefix))
			}
		}
	}
	return ""
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

func invalidVideoURL(raw string) error {
	return domain.NewValidationError("video_url must be a YouTube video link").
		WithContext("field", "video_url").
		WithContext("value", raw)
}

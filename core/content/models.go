package content

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
)

// Type discriminates the two content variants a course can carry.
type Type string

const (
	TypeRecorded Type = "recorded"
	TypeLive     Type = "live"
)

type (
	// VideoRef references an uploaded video file.
	VideoRef struct {
		URL         string `json:"url"`
		Filename    string `json:"filename"`
		Size        int64  `json:"size"`
		ContentType string `json:"content_type"`
	}

	// Chapter is one ordered, lockable unit of recorded content.
	Chapter struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Order       int       `json:"order"` // 1-based; contiguous within a record
		IsLocked    bool      `json:"is_locked"`
		Video       *VideoRef `json:"video,omitempty"`
	}

	// LiveSession describes a live-type course's scheduled session.
	// Whether it is currently active is never stored; it is recomputed
	// from the scheduled instant on every query.
	LiveSession struct {
		SessionURL   string    `json:"session_url"`
		EmbedURL     string    `json:"embed_url"`
		ScheduledAt  time.Time `json:"scheduled_at"` // UTC
		PasscodeHash []byte    `json:"-"`
	}

	// ContentRecord is the per-course content container. Exactly one of
	// Chapters or Live is set, determined by Type.
	ContentRecord struct {
		CourseID string `json:"course_id"`
		Type     Type   `json:"type"`
		OwnerID  string `json:"owner_id"`
		// IsPublic is independent of whatever published/draft flag the
		// course entity itself carries.
		IsPublic  bool         `json:"is_public"`
		Version   int          `json:"version"`
		Chapters  []Chapter    `json:"chapters,omitempty"`
		Live      *LiveSession `json:"live_session,omitempty"`
		CreatedAt time.Time    `json:"created_at"` // UTC
		UpdatedAt time.Time    `json:"updated_at"` // UTC
	}

	// LiveSessionInfo is the live session snapshot returned to callers.
	LiveSessionInfo struct {
		SessionURL  string    `json:"session_url"`
		EmbedURL    string    `json:"embed_url"`
		ScheduledAt time.Time `json:"scheduled_at"`
		IsActive    bool      `json:"is_active"` // derived from caller-supplied now
	}
)

func (r *ContentRecord) IsRecorded() bool { return r.Type == TypeRecorded }
func (r *ContentRecord) IsLive() bool     { return r.Type == TypeLive }

// chapterIndex returns the position of the chapter with the given id, or -1.
func (r *ContentRecord) chapterIndex(chapterID string) int {
	for i, ch := range r.Chapters {
		if ch.ID == chapterID {
			return i
		}
	}
	return -1
}

// checkOrder verifies the chapter order invariant: order values are unique
// and form the contiguous range 1..N in slice order.
func (r *ContentRecord) checkOrder() bool {
	for i, ch := range r.Chapters {
		if ch.Order != i+1 {
			return false
		}
	}
	return true
}

// Clone deep-copies the record so callers can treat snapshots as immutable.
func (r ContentRecord) Clone() ContentRecord {
	if r.Chapters != nil {
		chapters := make([]Chapter, len(r.Chapters))
		copy(chapters, r.Chapters)
		for i, ch := range chapters {
			if ch.Video != nil {
				vid := *ch.Video
				chapters[i].Video = &vid
			}
		}
		r.Chapters = chapters
	}
	if r.Live != nil {
		live := *r.Live
		live.PasscodeHash = append([]byte(nil), r.Live.PasscodeHash...)
		r.Live = &live
	}
	return r
}

func newChapterID() string { return uuid.New().String() }

// NewContent contains information needed to create a course's content record.
type NewContent struct {
	CourseID    string    `json:"course_id" validate:"required"`
	Type        Type      `json:"type" validate:"required,oneof=recorded live"`
	OwnerID     string    `json:"owner_id"`
	ScheduledAt time.Time `json:"scheduled_at"` // live content only
}

func (nc *NewContent) Validate(validate *validator.Validate) error {
	nc.CourseID = core.CleanString(nc.CourseID)
	nc.OwnerID = core.CleanString(nc.OwnerID)
	return validate.Struct(nc)
}

// NewChapter contains information needed to append a chapter.
type NewChapter struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewChapter) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

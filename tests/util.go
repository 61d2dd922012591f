package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/content"
)

// NewConfig returns the app configuration tuned for tests.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	return conf
}

// Chapters builds a well-ordered chapter set from titles; only the first
// chapter is unlocked.
func Chapters(titles ...string) []content.Chapter {
	chapters := make([]content.Chapter, 0, len(titles))
	for i, title := range titles {
		chapters = append(chapters, content.Chapter{
			ID:       uuid.New().String(),
			Title:    title,
			Order:    i + 1,
			IsLocked: i > 0,
		})
	}
	return chapters
}

func CreateRecordedContent(
	t *testing.T,
	repo content.Repository,
	courseID, ownerID string,
	chapters []content.Chapter,
	createdAt ...time.Time,
) content.ContentRecord {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	rec, err := repo.CreateContent(context.Background(), content.ContentRecord{
		CourseID:  courseID,
		Type:      content.TypeRecorded,
		OwnerID:   ownerID,
		Chapters:  chapters,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateRecordedContent() failed: %v", err)
	}
	return rec
}

func CreateLiveContent(
	t *testing.T,
	repo content.Repository,
	courseID, ownerID, passcode string,
	scheduledAt time.Time,
) content.ContentRecord {
	var hash []byte
	if passcode != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.MinCost); err != nil {
			t.Fatalf("CreateLiveContent() failed: %v", err)
		}
	}
	tstamp := time.Now().UTC()
	rec, err := repo.CreateContent(context.Background(), content.ContentRecord{
		CourseID: courseID,
		Type:     content.TypeLive,
		OwnerID:  ownerID,
		Live: &content.LiveSession{
			SessionURL:   fmt.Sprintf("http://localhost:3000/live/%s", courseID),
			EmbedURL:     fmt.Sprintf("http://localhost:3000/live/%s/embed", courseID),
			ScheduledAt:  scheduledAt.UTC(),
			PasscodeHash: hash,
		},
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateLiveContent() failed: %v", err)
	}
	return rec
}

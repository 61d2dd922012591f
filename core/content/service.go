package content

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound           = errors.New("course content not found")
	ErrChapterNotFound    = errors.New("chapter not found")
	ErrContentExists      = errors.New("content already exists for this course")
	ErrWrongContentType   = errors.New("operation not supported for this content type")
	ErrInvalidPermutation = errors.New("chapter ids do not match the existing chapter set")
	ErrInvalidMediaType   = errors.New("file is not a recognized video type")
	ErrMediaTooLarge      = errors.New("video exceeds the maximum allowed size")
	ErrStaleVersion       = errors.New("content was modified concurrently")
	ErrBadPasscode        = errors.New("invalid passcode")

	errCorruptOrder = "corrupted chapter order sequence"

	videoContentTypes = []string{"video/mp4", "video/webm", "video/quicktime", "video/x-matroska"}
	videoExtensions   = []string{".mp4", ".webm", ".mov", ".mkv"}
)

type (
	// Repository owns the persisted content records. UpdateContent applies
	// optimistic concurrency: the passed record's Version is the version the
	// caller read; a mismatch fails with ErrStaleVersion and the stored
	// version is bumped on success.
	Repository interface {
		CreateContent(ctx context.Context, rec ContentRecord) (ContentRecord, error)
		GetContent(ctx context.Context, courseID string) (ContentRecord, error)
		QueryAllContent(ctx context.Context) ([]ContentRecord, error)
		UpdateContent(ctx context.Context, rec ContentRecord) (ContentRecord, error)
		DeleteContentByCourseID(ctx context.Context, courseIDs ...string) error
	}

	Service struct {
		repo     Repository
		logger   core.Logger
		mailSvc  core.EmailService
		transfer TransferFunc
		conf     *core.Config
	}
)

func NewService(repo Repository, logger core.Logger, mailSvc core.EmailService, transfer TransferFunc, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		logger:   logger,
		mailSvc:  mailSvc,
		transfer: transfer,
		conf:     conf,
	}
}

// Create creates the content record for a course. Recorded content is
// seeded with default chapters where only the lead-in chapter is unlocked
// (progressive disclosure). Live content gets a session with fresh URLs;
// the returned passcode is only available here, it is stored hashed.
func (svc *Service) Create(ctx context.Context, nc NewContent) (ContentRecord, string, error) {
	now := time.Now().UTC()
	rec := ContentRecord{
		CourseID:  nc.CourseID,
		Type:      nc.Type,
		OwnerID:   nc.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var passcode string
	switch nc.Type {
	case TypeRecorded:
		rec.Chapters = svc.seedChapters()
	case TypeLive:
		live, pc, err := newLiveSession(svc.conf.FrontendBaseURL, nc.ScheduledAt.UTC())
		if err != nil {
			return ContentRecord{}, "", pkgerrors.Wrap(err, "generating live session")
		}
		rec.Live = &live
		passcode = pc
	default:
		return ContentRecord{}, "", ErrWrongContentType
	}

	rec, err := svc.repo.CreateContent(ctx, rec)
	if err != nil {
		return ContentRecord{}, "", err
	}
	return rec, passcode, nil
}

// seedChapters builds the default chapter set: first unlocked, rest locked.
func (svc *Service) seedChapters() []Chapter {
	n := svc.conf.Content.DefaultChapterCount
	if n < 1 {
		n = 1
	}
	chapters := make([]Chapter, 0, n)
	for i := 1; i <= n; i++ {
		chapters = append(chapters, Chapter{
			ID:       newChapterID(),
			Title:    fmt.Sprintf("Chapter %d", i),
			Order:    i,
			IsLocked: i > 1,
		})
	}
	return chapters
}

func (svc *Service) Get(ctx context.Context, courseID string) (ContentRecord, error) {
	return svc.repo.GetContent(ctx, courseID)
}

func (svc *Service) QueryAll(ctx context.Context) ([]ContentRecord, error) {
	return svc.repo.QueryAllContent(ctx)
}

func (svc *Service) Delete(ctx context.Context, courseIDs ...string) error {
	return svc.repo.DeleteContentByCourseID(ctx, courseIDs...)
}

// AddChapter appends a new chapter at the end of the list, locked.
func (svc *Service) AddChapter(ctx context.Context, courseID string, nc NewChapter) (Chapter, error) {
	var chapter Chapter
	err := svc.updateRecorded(ctx, courseID, func(rec *ContentRecord) error {
		chapter = Chapter{
			ID:          newChapterID(),
			Title:       nc.Title,
			Description: nc.Description,
			Order:       len(rec.Chapters) + 1,
			IsLocked:    true,
		}
		rec.Chapters = append(rec.Chapters, chapter)
		return nil
	})
	return chapter, err
}

// ReorderChapters reassigns chapter order to match the given id sequence,
// starting at 1. The sequence must be an exact permutation of the existing
// chapter ids.
func (svc *Service) ReorderChapters(ctx context.Context, courseID string, orderedIDs []string) ([]Chapter, error) {
	var chapters []Chapter
	err := svc.updateRecorded(ctx, courseID, func(rec *ContentRecord) error {
		if len(orderedIDs) != len(rec.Chapters) {
			return ErrInvalidPermutation
		}
		reordered := make([]Chapter, 0, len(rec.Chapters))
		seen := make(map[string]struct{}, len(orderedIDs))
		for i, id := range orderedIDs {
			if _, dup := seen[id]; dup {
				return ErrInvalidPermutation
			}
			seen[id] = struct{}{}
			idx := rec.chapterIndex(id)
			if idx < 0 {
				return ErrInvalidPermutation
			}
			ch := rec.Chapters[idx]
			ch.Order = i + 1
			reordered = append(reordered, ch)
		}
		rec.Chapters = reordered
		chapters = reordered
		return nil
	})
	return chapters, err
}

// DeleteChapter removes a chapter and re-compacts the remaining order
// values to 1..N-1, preserving relative order.
func (svc *Service) DeleteChapter(ctx context.Context, courseID, chapterID string) ([]Chapter, error) {
	var chapters []Chapter
	err := svc.updateRecorded(ctx, courseID, func(rec *ContentRecord) error {
		idx := rec.chapterIndex(chapterID)
		if idx < 0 {
			return ErrChapterNotFound
		}
		rec.Chapters = append(rec.Chapters[:idx], rec.Chapters[idx+1:]...)
		for i := range rec.Chapters {
			rec.Chapters[i].Order = i + 1
		}
		chapters = rec.Chapters
		return nil
	})
	return chapters, err
}

// AttachVideo validates and attaches a video reference to a chapter.
// Permission checks (content-create/content-edit) are the caller's duty.
func (svc *Service) AttachVideo(ctx context.Context, courseID, chapterID string, ref VideoRef) (Chapter, error) {
	if err := svc.ValidateVideoRef(ref); err != nil {
		return Chapter{}, err
	}

	var chapter Chapter
	err := svc.updateRecorded(ctx, courseID, func(rec *ContentRecord) error {
		idx := rec.chapterIndex(chapterID)
		if idx < 0 {
			return ErrChapterNotFound
		}
		vid := ref
		rec.Chapters[idx].Video = &vid
		chapter = rec.Chapters[idx]
		return nil
	})
	return chapter, err
}

// ValidateVideoRef checks the media type and size of a video reference.
func (svc *Service) ValidateVideoRef(ref VideoRef) error {
	if !isVideo(ref) {
		return ErrInvalidMediaType
	}
	if ref.Size > svc.conf.Content.MaxVideoBytes {
		return ErrMediaTooLarge
	}
	return nil
}

func isVideo(ref VideoRef) bool {
	for _, ct := range videoContentTypes {
		if ref.ContentType == ct {
			return true
		}
	}
	fname := strings.ToLower(ref.Filename)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(fname, ext) {
			return true
		}
	}
	return false
}

// SetChapterLocked is the explicit lock override used by privileged roles,
// e.g. force-unlocking a chapter for promotion or re-locking after a trial.
func (svc *Service) SetChapterLocked(ctx context.Context, courseID, chapterID string, locked bool) (Chapter, error) {
	var chapter Chapter
	err := svc.updateRecorded(ctx, courseID, func(rec *ContentRecord) error {
		idx := rec.chapterIndex(chapterID)
		if idx < 0 {
			return ErrChapterNotFound
		}
		rec.Chapters[idx].IsLocked = locked
		chapter = rec.Chapters[idx]
		return nil
	})
	return chapter, err
}

// HandleEnrollment reacts to an external enrollment event: all chapters of
// the course unlock. This is one-way; chapters are never auto-re-locked on
// enrollment loss. A notification is emailed when an address is supplied.
func (svc *Service) HandleEnrollment(ctx context.Context, courseID, studentEmail string) error {
	err := svc.updateRecorded(ctx, courseID, func(rec *ContentRecord) error {
		for i := range rec.Chapters {
			rec.Chapters[i].IsLocked = false
		}
		return nil
	})
	if err != nil {
		return err
	}

	if studentEmail != "" && svc.mailSvc != nil {
		msg := &core.EmailMessage{
			To:      []mail.Address{{Address: studentEmail}},
			Subject: "Your course is ready",
			BodyStr: fmt.Sprintf("You are enrolled; all chapters of course %s are now unlocked.", courseID),
		}
		if err := msg.Render(svc.conf); err != nil {
			svc.logger.Error("rendering enrollment email", err)
		} else {
			svc.mailSvc.SendMessages(msg)
		}
	}
	return nil
}

// SetPublic sets the content visibility flag. Idempotent: repeating the
// same value performs no write.
func (svc *Service) SetPublic(ctx context.Context, courseID string, isPublic bool) error {
	rec, err := svc.repo.GetContent(ctx, courseID)
	if err != nil {
		return err
	}
	if rec.IsPublic == isPublic {
		return nil
	}
	rec.IsPublic = isPublic
	rec.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateContent(ctx, rec)
	return err
}

// IsPublic reports the visibility flag. Unknown courses are private
// (closed-world default), never an error.
func (svc *Service) IsPublic(ctx context.Context, courseID string) (bool, error) {
	rec, err := svc.repo.GetContent(ctx, courseID)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return rec.IsPublic, nil
}

// GetChapters returns the chapter list of a recorded course.
func (svc *Service) GetChapters(ctx context.Context, courseID string) ([]Chapter, error) {
	rec, err := svc.repo.GetContent(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !rec.IsRecorded() {
		return nil, ErrWrongContentType
	}
	return rec.Chapters, nil
}

// ContentType returns the content type for a course; the zero Type means
// the course has no content record.
func (svc *Service) ContentType(ctx context.Context, courseID string) (Type, error) {
	rec, err := svc.repo.GetContent(ctx, courseID)
	if err != nil {
		if err == ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return rec.Type, nil
}

// LiveSessionInfo snapshots the live session of a course, deriving its
// activity from the caller-supplied now. A missing record or a recorded
// course yields nil.
func (svc *Service) LiveSessionInfo(ctx context.Context, courseID string, now time.Time) (*LiveSessionInfo, error) {
	rec, err := svc.repo.GetContent(ctx, courseID)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	if !rec.IsLive() || rec.Live == nil {
		return nil, nil
	}
	return &LiveSessionInfo{
		SessionURL:  rec.Live.SessionURL,
		EmbedURL:    rec.Live.EmbedURL,
		ScheduledAt: rec.Live.ScheduledAt,
		IsActive:    rec.Live.IsActiveAt(now),
	}, nil
}

// CheckPasscode verifies a live session passcode.
func (svc *Service) CheckPasscode(ctx context.Context, courseID, passcode string) error {
	rec, err := svc.repo.GetContent(ctx, courseID)
	if err != nil {
		return err
	}
	if !rec.IsLive() || rec.Live == nil {
		return ErrWrongContentType
	}
	return rec.Live.CheckPasscode(passcode)
}

// ResetPasscode regenerates a live session passcode and returns it once.
func (svc *Service) ResetPasscode(ctx context.Context, courseID string) (string, error) {
	rec, err := svc.repo.GetContent(ctx, courseID)
	if err != nil {
		return "", err
	}
	if !rec.IsLive() || rec.Live == nil {
		return "", ErrWrongContentType
	}
	passcode, hash, err := newPasscode()
	if err != nil {
		return "", pkgerrors.Wrap(err, "generating passcode")
	}
	rec.Live.PasscodeHash = hash
	rec.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateContent(ctx, rec); err != nil {
		return "", err
	}
	return passcode, nil
}

// updateRecorded runs a chapter mutation on a recorded course's record
// under the repository's optimistic concurrency check.
func (svc *Service) updateRecorded(ctx context.Context, courseID string, mutate func(rec *ContentRecord) error) error {
	rec, err := svc.repo.GetContent(ctx, courseID)
	if err != nil {
		return err
	}
	if !rec.IsRecorded() {
		return ErrWrongContentType
	}
	if !rec.checkOrder() {
		// invariant violation: loud, never silently repaired
		svc.logger.Error(errCorruptOrder, map[string]interface{}{"course_id": courseID})
		return pkgerrors.Wrap(core.NewShutdownError(errCorruptOrder), courseID)
	}
	if err := mutate(&rec); err != nil {
		return err
	}
	if !rec.checkOrder() {
		svc.logger.Error(errCorruptOrder, map[string]interface{}{"course_id": courseID})
		return pkgerrors.Wrap(core.NewShutdownError(errCorruptOrder), courseID)
	}
	rec.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateContent(ctx, rec)
	return err
}

package content

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrUploadTimeout = errors.New("video upload timed out")

// UploadStatus is the lifecycle state of a video upload.
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadCompleted UploadStatus = "completed"
	UploadFailed    UploadStatus = "failed"
	UploadCanceled  UploadStatus = "canceled"
)

type (
	// TransferFunc moves the video bytes to the storage collaborator and
	// returns the final URL. It must honor ctx cancellation.
	TransferFunc func(ctx context.Context, ref VideoRef) (string, error)

	// NotifyFunc receives the terminal upload state. It is called exactly
	// once, from the upload goroutine.
	NotifyFunc func(UploadResult)

	// UploadResult is the terminal state delivered to NotifyFunc.
	UploadResult struct {
		ID        string       `json:"id"`
		CourseID  string       `json:"course_id"`
		ChapterID string       `json:"chapter_id"`
		Ref       VideoRef     `json:"ref"`
		Status    UploadStatus `json:"status"`
		Err       error        `json:"-"`
	}

	// Upload is the pending handle returned by StartUpload.
	Upload struct {
		ID        string       `json:"id"`
		CourseID  string       `json:"course_id"`
		ChapterID string       `json:"chapter_id"`
		Ref       VideoRef     `json:"ref"`
		Status    UploadStatus `json:"status"`
		Err       error        `json:"-"`

		mu     sync.Mutex
		cancel context.CancelFunc
		done   chan struct{}
	}
)

// Cancel aborts an in-flight upload. Safe to call more than once.
func (u *Upload) Cancel() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.cancel != nil {
		u.cancel()
	}
}

// Done is closed once the upload reached a terminal state.
func (u *Upload) Done() <-chan struct{} { return u.done }

func (u *Upload) finish(status UploadStatus, err error) UploadResult {
	u.mu.Lock()
	u.Status = status
	u.Err = err
	u.mu.Unlock()
	return UploadResult{
		ID:        u.ID,
		CourseID:  u.CourseID,
		ChapterID: u.ChapterID,
		Ref:       u.Ref,
		Status:    status,
		Err:       err,
	}
}

// StartUpload validates the video reference and the target chapter, then
// returns immediately with a pending handle; the transfer runs in the
// background under the configured timeout. Completion or failure is
// delivered through notify, never by blocking the caller. A stalled
// transfer fails with ErrUploadTimeout instead of hanging.
func (svc *Service) StartUpload(ctx context.Context, courseID, chapterID string, ref VideoRef, notify NotifyFunc) (*Upload, error) {
	if err := svc.ValidateVideoRef(ref); err != nil {
		return nil, err
	}

	// fail fast on unknown targets before going async
	rec, err := svc.repo.GetContent(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !rec.IsRecorded() {
		return nil, ErrWrongContentType
	}
	if rec.chapterIndex(chapterID) < 0 {
		return nil, ErrChapterNotFound
	}

	upCtx, cancel := context.WithTimeout(context.Background(), svc.conf.Content.UploadTimeout)
	up := &Upload{
		ID:        uuid.New().String(),
		CourseID:  courseID,
		ChapterID: chapterID,
		Ref:       ref,
		Status:    UploadPending,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go func() {
		defer cancel()
		defer close(up.done)

		url, err := svc.transfer(upCtx, ref)
		if err != nil {
			var status UploadStatus
			switch upCtx.Err() {
			case context.DeadlineExceeded:
				status, err = UploadFailed, ErrUploadTimeout
			case context.Canceled:
				status = UploadCanceled
			default:
				status = UploadFailed
			}
			notify(up.finish(status, err))
			return
		}

		ref.URL = url
		if _, err := svc.AttachVideo(context.Background(), courseID, chapterID, ref); err != nil {
			notify(up.finish(UploadFailed, err))
			return
		}
		notify(up.finish(UploadCompleted, nil))
	}()

	return up, nil
}

// PassthroughTransfer is the default TransferFunc: the bytes already live
// at the referenced URL (moved by the external storage collaborator), so
// there is nothing to move.
func PassthroughTransfer(ctx context.Context, ref VideoRef) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return ref.URL, nil
}

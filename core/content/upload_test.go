package content_test

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/content"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

func newTransferService(t *testing.T, transfer content.TransferFunc) (*content.Service, content.Repository, *core.Config) {
	t.Helper()

	conf := testutil.NewConfig()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewContentRepository(db)
	logger := core.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	svc := content.NewService(repo, logger, emailsvc.NewConsoleServiceMock(conf), transfer, conf)
	return svc, repo, conf
}

func validRef() content.VideoRef {
	return content.VideoRef{
		URL:         "https://cdn.example.com/tmp/lecture.mp4",
		Filename:    "lecture.mp4",
		Size:        1 << 20,
		ContentType: "video/mp4",
	}
}

func waitNotify(t *testing.T, ch <-chan content.UploadResult) content.UploadResult {
	t.Helper()
	select {
	case up := <-ch:
		return up
	case <-time.After(5 * time.Second):
		t.Fatalf("upload never reached a terminal state")
		return content.UploadResult{}
	}
}

func Test_Service_StartUpload(t *testing.T) {
	finalURL := "https://cdn.internal/videos/lecture.mp4"
	svc, repo, _ := newTransferService(t, func(ctx context.Context, ref content.VideoRef) (string, error) {
		return finalURL, nil
	})
	ctx := context.Background()

	chs := testutil.Chapters("Intro")
	testutil.CreateRecordedContent(t, repo, "crs1", "own1", chs)

	notifyChan := make(chan content.UploadResult, 1)
	up, err := svc.StartUpload(ctx, "crs1", chs[0].ID, validRef(), func(u content.UploadResult) { notifyChan <- u })
	if err != nil {
		t.Fatalf("StartUpload() failed: %v", err)
	}
	if up.Status != content.UploadPending {
		t.Errorf("Status = %q; want %q", up.Status, content.UploadPending)
	}

	got := waitNotify(t, notifyChan)
	if got.Status != content.UploadCompleted {
		t.Fatalf("Status = %q (err %v); want %q", got.Status, got.Err, content.UploadCompleted)
	}
	<-up.Done()

	rec, err := repo.GetContent(ctx, "crs1")
	if err != nil {
		t.Fatalf("GetContent() failed: %v", err)
	}
	if rec.Chapters[0].Video == nil {
		t.Fatalf("video not attached")
	}
	if rec.Chapters[0].Video.URL != finalURL {
		t.Errorf("Video.URL = %q; want %q", rec.Chapters[0].Video.URL, finalURL)
	}
}

func Test_Service_StartUpload_validation(t *testing.T) {
	svc, repo, conf := newTransferService(t, content.PassthroughTransfer)
	ctx := context.Background()

	chs := testutil.Chapters("Intro")
	testutil.CreateRecordedContent(t, repo, "crs1", "own1", chs)
	testutil.CreateLiveContent(t, repo, "crs-live", "own1", "", time.Now())

	huge := validRef()
	huge.Size = conf.Content.MaxVideoBytes + 1
	notAVideo := validRef()
	notAVideo.Filename = "slides.pdf"
	notAVideo.ContentType = "application/pdf"

	noNotify := func(content.UploadResult) { t.Errorf("notify must not fire on synchronous failures") }

	tests := []struct {
		name      string
		courseID  string
		chapterID string
		ref       content.VideoRef
		wantErr   error
	}{
		{name: "not a video", courseID: "crs1", chapterID: chs[0].ID, ref: notAVideo, wantErr: content.ErrInvalidMediaType},
		{name: "too large", courseID: "crs1", chapterID: chs[0].ID, ref: huge, wantErr: content.ErrMediaTooLarge},
		{name: "unknown course", courseID: "nope", chapterID: chs[0].ID, ref: validRef(), wantErr: content.ErrNotFound},
		{name: "live content", courseID: "crs-live", chapterID: chs[0].ID, ref: validRef(), wantErr: content.ErrWrongContentType},
		{name: "unknown chapter", courseID: "crs1", chapterID: "nope", ref: validRef(), wantErr: content.ErrChapterNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.StartUpload(ctx, tt.courseID, tt.chapterID, tt.ref, noNotify); !errors.Is(err, tt.wantErr) {
				t.Errorf("StartUpload() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func Test_Service_StartUpload_timeout(t *testing.T) {
	svc, repo, conf := newTransferService(t, func(ctx context.Context, ref content.VideoRef) (string, error) {
		<-ctx.Done() // stalled transfer
		return "", ctx.Err()
	})
	conf.Content.UploadTimeout = 30 * time.Millisecond

	chs := testutil.Chapters("Intro")
	testutil.CreateRecordedContent(t, repo, "crs1", "own1", chs)

	notifyChan := make(chan content.UploadResult, 1)
	if _, err := svc.StartUpload(context.Background(), "crs1", chs[0].ID, validRef(), func(u content.UploadResult) { notifyChan <- u }); err != nil {
		t.Fatalf("StartUpload() failed: %v", err)
	}

	got := waitNotify(t, notifyChan)
	if got.Status != content.UploadFailed {
		t.Errorf("Status = %q; want %q", got.Status, content.UploadFailed)
	}
	if !errors.Is(got.Err, content.ErrUploadTimeout) {
		t.Errorf("Err = %v; want %v", got.Err, content.ErrUploadTimeout)
	}
}

func Test_Service_StartUpload_cancel(t *testing.T) {
	svc, repo, _ := newTransferService(t, func(ctx context.Context, ref content.VideoRef) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	chs := testutil.Chapters("Intro")
	testutil.CreateRecordedContent(t, repo, "crs1", "own1", chs)

	notifyChan := make(chan content.UploadResult, 1)
	up, err := svc.StartUpload(context.Background(), "crs1", chs[0].ID, validRef(), func(u content.UploadResult) { notifyChan <- u })
	if err != nil {
		t.Fatalf("StartUpload() failed: %v", err)
	}
	up.Cancel()

	got := waitNotify(t, notifyChan)
	if got.Status != content.UploadCanceled {
		t.Errorf("Status = %q; want %q", got.Status, content.UploadCanceled)
	}

	// no video must have been attached
	rec, err := repo.GetContent(context.Background(), "crs1")
	if err != nil {
		t.Fatalf("GetContent() failed: %v", err)
	}
	if rec.Chapters[0].Video != nil {
		t.Errorf("video attached despite cancellation")
	}
}

package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/content"
	"github.com/trezcool/darasa/core/role"
	testutil "github.com/trezcool/darasa/tests"
)

type contentResponse struct {
	content.ContentRecord
	Passcode string `json:"passcode"`
}

func Test_contentApi_create(t *testing.T) {
	db.Reset()

	testutil.CreateRecordedContent(t, contentRepo, "crs-dup", "own1", testutil.Chapters("Intro"))

	recordedBody := marchallObj(t, content.NewContent{CourseID: "crs-new", Type: content.TypeRecorded})

	tests := []httpTest{
		{name: "Auth required", body: recordedBody, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "content-create required", body: recordedBody,
			token: getToken(t, "stu1", []string{role.RoleLearningStudent}), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name: "unknown type rejected", body: marchallObj(t, content.NewContent{CourseID: "crs-x", Type: "hybrid"}),
			token: getToken(t, "tea1", []string{role.RoleTeachingTeacher}), wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate course rejected", body: marchallObj(t, content.NewContent{CourseID: "crs-dup", Type: content.TypeRecorded}),
			token: getToken(t, "tea1", []string{role.RoleTeachingTeacher}), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: content.ErrContentExists.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/content", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("recorded content created", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/content", getToken(t, "tea1", []string{role.RoleTeachingTeacher}), recordedBody)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var got contentResponse
		unmarchallObj(t, rec.Body.Bytes(), &got)
		if got.CourseID != "crs-new" || got.Type != content.TypeRecorded {
			t.Errorf("unexpected record: %+v", got.ContentRecord)
		}
		if got.OwnerID != "tea1" { // defaults to the caller
			t.Errorf("OwnerID = %q; want %q", got.OwnerID, "tea1")
		}
		if got.Version != 1 {
			t.Errorf("Version = %d; want 1", got.Version)
		}
		if len(got.Chapters) != conf.Content.DefaultChapterCount {
			t.Fatalf("len(Chapters) = %d; want %d", len(got.Chapters), conf.Content.DefaultChapterCount)
		}
		for i, ch := range got.Chapters {
			if ch.Order != i+1 {
				t.Errorf("Chapters[%d].Order = %d; want %d", i, ch.Order, i+1)
			}
			if wantLocked := i > 0; ch.IsLocked != wantLocked {
				t.Errorf("Chapters[%d].IsLocked = %v; want %v", i, ch.IsLocked, wantLocked)
			}
		}
		if got.Passcode != "" {
			t.Errorf("recorded content must not have a passcode")
		}
	})

	t.Run("live content created", func(t *testing.T) {
		body := marchallObj(t, content.NewContent{
			CourseID:    "crs-live",
			Type:        content.TypeLive,
			ScheduledAt: time.Now().Add(48 * time.Hour).UTC(),
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/content", getToken(t, "tea1", []string{role.RoleTeachingTeacher}), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var got contentResponse
		unmarchallObj(t, rec.Body.Bytes(), &got)
		if got.Live == nil {
			t.Fatalf("live session not set")
		}
		if got.Live.SessionURL == "" || got.Live.EmbedURL == "" {
			t.Errorf("live session URLs not set: %+v", got.Live)
		}
		if got.Passcode == "" {
			t.Errorf("passcode must be returned on creation")
		}
		if len(got.Chapters) != 0 {
			t.Errorf("live content must not have chapters")
		}
	})
}

func Test_contentApi_query(t *testing.T) {
	db.Reset()

	rec1 := testutil.CreateRecordedContent(t, contentRepo, "crs1", "own1", testutil.Chapters("Intro"))

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff required", token: getToken(t, "stu1", []string{role.RoleLearningStudent}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Get all", token: getToken(t, "qa1", []string{role.RoleTechnicalQA}),
			wantCode: http.StatusOK, wantData: marchallList(t, rec1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/content", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_contentApi_chapters(t *testing.T) {
	db.Reset()

	chs := testutil.Chapters("Intro", "Basics", "Advanced")
	testutil.CreateRecordedContent(t, contentRepo, "crs1", "own1", chs)
	live := testutil.CreateLiveContent(t, contentRepo, "crs-live", "own1", "", time.Now().Add(time.Hour))

	studentToken := getToken(t, "stu1", []string{role.RoleLearningStudent})
	ownerToken := getToken(t, "own1", []string{role.RoleMentoringJunior})

	tests := []httpTest{
		{
			name: "chapters listed", method: http.MethodGet, path: "/v1/content/crs1/chapters",
			token: studentToken, wantCode: http.StatusOK, wantData: marchallList(t, chs[0], chs[1], chs[2]),
		},
		{
			name: "no chapters on live content", method: http.MethodGet, path: "/v1/content/" + live.CourseID + "/chapters",
			token: studentToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: content.ErrWrongContentType.Error()}),
		},
		{
			name: "unknown course", method: http.MethodGet, path: "/v1/content/nope/chapters",
			token: studentToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: content.ErrNotFound.Error()}),
		},
		{
			name: "edit is ownership-scoped for junior mentors", method: http.MethodPost, path: "/v1/content/crs1/chapters",
			body:  marchallObj(t, content.NewChapter{Title: "Extra"}),
			token: getToken(t, "other", []string{role.RoleMentoringJunior}), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name: "trainees never edit, even owned content", method: http.MethodPost, path: "/v1/content/crs1/chapters",
			body:  marchallObj(t, content.NewChapter{Title: "Extra"}),
			token: getToken(t, "own1", []string{role.RoleMentoringTrainee}), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("owner appends a chapter", func(t *testing.T) {
		body := marchallObj(t, content.NewChapter{Title: "Extra", Description: "bonus material"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/content/crs1/chapters", ownerToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var got content.Chapter
		unmarchallObj(t, rec.Body.Bytes(), &got)
		if got.Order != 4 {
			t.Errorf("Order = %d; want 4 (appended at the end)", got.Order)
		}
		if !got.IsLocked {
			t.Errorf("new chapters must start locked")
		}
	})
}

func Test_contentApi_reorderChapters(t *testing.T) {
	db.Reset()

	chs := testutil.Chapters("Intro", "Basics", "Advanced")
	testutil.CreateRecordedContent(t, contentRepo, "crs1", "own1", chs)

	execToken := getToken(t, "exec1", []string{role.RoleExecutiveDirector})

	reversed := chs[2]
	reversed.Order = 1
	middle := chs[1]
	middle.Order = 2
	first := chs[0]
	first.Order = 3

	tests := []httpTest{
		{
			name: "not a permutation: wrong length", body: marchallObj(t, map[string][]string{"chapter_ids": {chs[0].ID}}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: content.ErrInvalidPermutation.Error()}),
		},
		{
			name: "not a permutation: duplicate id", body: marchallObj(t, map[string][]string{"chapter_ids": {chs[0].ID, chs[0].ID, chs[1].ID}}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: content.ErrInvalidPermutation.Error()}),
		},
		{
			name: "not a permutation: foreign id", body: marchallObj(t, map[string][]string{"chapter_ids": {chs[0].ID, chs[1].ID, "nope"}}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: content.ErrInvalidPermutation.Error()}),
		},
		{
			name: "reordered", body: marchallObj(t, map[string][]string{"chapter_ids": {chs[2].ID, chs[1].ID, chs[0].ID}}),
			wantCode: http.StatusOK, wantData: marchallList(t, reversed, middle, first),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, "/v1/content/crs1/chapters/order", execToken, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_contentApi_deleteChapter(t *testing.T) {
	db.Reset()

	chs := testutil.Chapters("Intro", "Basics", "Advanced")
	testutil.CreateRecordedContent(t, contentRepo, "crs1", "own1", chs)

	// remaining chapters re-compact to 1..N-1
	first := chs[0]
	last := chs[2]
	last.Order = 2

	tests := []httpTest{
		{
			name: "content-edit required", token: getToken(t, "stu1", []string{role.RoleLearningStudent}),
			path: "/v1/content/crs1/chapters/" + chs[1].ID, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name: "unknown chapter", token: getToken(t, "cm1", []string{role.RoleSpecializedContentManager}),
			path: "/v1/content/crs1/chapters/nope", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: content.ErrChapterNotFound.Error()}),
		},
		{
			name: "deleted and re-compacted", token: getToken(t, "cm1", []string{role.RoleSpecializedContentManager}),
			path: "/v1/content/crs1/chapters/" + chs[1].ID, wantCode: http.StatusOK,
			wantData: marchallList(t, first, last),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_contentApi_lockChapter(t *testing.T) {
	db.Reset()

	chs := testutil.Chapters("Intro", "Basics")
	testutil.CreateRecordedContent(t, contentRepo, "crs1", "own1", chs)

	unlocked := chs[1]
	unlocked.IsLocked = false

	tt := httpTest{
		name:     "chapter force-unlocked",
		token:    getToken(t, "cm1", []string{role.RoleSpecializedContentManager}),
		body:     marchallObj(t, map[string]bool{"is_locked": false}),
		wantCode: http.StatusOK,
		wantData: marchallObj(t, unlocked),
	}
	t.Run(tt.name, func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/content/crs1/chapters/"+chs[1].ID+"/lock", tt.token, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_contentApi_attachVideo(t *testing.T) {
	db.Reset()

	chs := testutil.Chapters("Intro", "Basics")
	testutil.CreateRecordedContent(t, contentRepo, "crs1", "own1", chs)

	ownerToken := getToken(t, "own1", []string{role.RoleMentoringMentor})
	path := "/v1/content/crs1/chapters/" + chs[0].ID + "/video"

	video := func(filename string, size int64) []byte {
		return marchallObj(t, map[string]interface{}{
			"url":      "https://cdn.example.com/uploads/" + filename,
			"filename": filename,
			"size":     size,
		})
	}

	tests := []httpTest{
		{
			name: "not a video", body: video("slides.pdf", 1024),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: content.ErrInvalidMediaType.Error()}),
		},
		{
			name: "too large", body: video("lecture.mp4", conf.Content.MaxVideoBytes+1),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: content.ErrMediaTooLarge.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, ownerToken, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("upload accepted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, ownerToken, video("lecture.mp4", 1<<20))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusAccepted, rec.Body.String())
		}

		var got struct {
			ID     string               `json:"id"`
			Status content.UploadStatus `json:"status"`
		}
		unmarchallObj(t, rec.Body.Bytes(), &got)
		if got.ID == "" {
			t.Errorf("upload id not set")
		}
		if got.Status != content.UploadPending {
			t.Errorf("Status = %q; want %q", got.Status, content.UploadPending)
		}
	})
}

func Test_contentApi_visibility(t *testing.T) {
	db.Reset()

	testutil.CreateRecordedContent(t, contentRepo, "crs1", "own1", testutil.Chapters("Intro"))

	studentToken := getToken(t, "stu1", []string{role.RoleLearningStudent})
	ownerToken := getToken(t, "own1", []string{role.RoleMentoringMentor})

	publicBody := marchallObj(t, map[string]bool{"is_public": true})

	tests := []httpTest{
		{
			name: "private by default", method: http.MethodGet, path: "/v1/content/crs1/visibility",
			token: studentToken, wantCode: http.StatusOK, wantData: marchallObj(t, map[string]bool{"is_public": false}),
		},
		{
			name: "unknown courses are private, not an error", method: http.MethodGet, path: "/v1/content/nope/visibility",
			token: studentToken, wantCode: http.StatusOK, wantData: marchallObj(t, map[string]bool{"is_public": false}),
		},
		{
			name: "content-edit required to publish", method: http.MethodPut, path: "/v1/content/crs1/visibility",
			body: publicBody, token: studentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "owner publishes", method: http.MethodPut, path: "/v1/content/crs1/visibility",
			body: publicBody, token: ownerToken, wantCode: http.StatusOK, wantData: marchallObj(t, map[string]bool{"is_public": true}),
		},
		{
			name: "published", method: http.MethodGet, path: "/v1/content/crs1/visibility",
			token: studentToken, wantCode: http.StatusOK, wantData: marchallObj(t, map[string]bool{"is_public": true}),
		},
		{
			name: "idempotent re-publish", method: http.MethodPut, path: "/v1/content/crs1/visibility",
			body: publicBody, token: ownerToken, wantCode: http.StatusOK, wantData: marchallObj(t, map[string]bool{"is_public": true}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_contentApi_live(t *testing.T) {
	db.Reset()

	scheduledAt := time.Now().Add(24 * time.Hour).UTC()
	live := testutil.CreateLiveContent(t, contentRepo, "crs-live", "own1", "s3cret-pass", scheduledAt)
	testutil.CreateRecordedContent(t, contentRepo, "crs-rec", "own1", testutil.Chapters("Intro"))

	studentToken := getToken(t, "stu1", []string{role.RoleLearningStudent})

	tests := []httpTest{
		{
			name: "upcoming session is inactive", method: http.MethodGet, path: "/v1/content/crs-live/live",
			token: studentToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, content.LiveSessionInfo{
				SessionURL:  live.Live.SessionURL,
				EmbedURL:    live.Live.EmbedURL,
				ScheduledAt: scheduledAt,
				IsActive:    false,
			}),
		},
		{
			name: "no live session on recorded content", method: http.MethodGet, path: "/v1/content/crs-rec/live",
			token: studentToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "passcode accepted", method: http.MethodPost, path: "/v1/content/crs-live/live/passcode-check",
			body: marchallObj(t, map[string]string{"passcode": "s3cret-pass"}), token: studentToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"success": "passcode accepted"}),
		},
		{
			name: "passcode rejected", method: http.MethodPost, path: "/v1/content/crs-live/live/passcode-check",
			body: marchallObj(t, map[string]string{"passcode": "nope"}), token: studentToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: content.ErrBadPasscode.Error()}),
		},
		{
			name: "content type reported", method: http.MethodGet, path: "/v1/content/crs-live/type",
			token: studentToken, wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"type": "live"}),
		},
		{
			name: "missing content type is empty, not an error", method: http.MethodGet, path: "/v1/content/nope/type",
			token: studentToken, wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"type": ""}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_contentApi_enrollment(t *testing.T) {
	db.Reset()

	testutil.CreateRecordedContent(t, contentRepo, "crs1", "own1", testutil.Chapters("Intro", "Basics", "Advanced"))

	opsToken := getToken(t, "svc-enroll", []string{role.RoleExecutiveOperations})
	body := marchallObj(t, map[string]string{"course_id": "crs1", "student_email": "hero@test.cd"})

	tests := []httpTest{
		{name: "Auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "user-manage required", body: body,
			token: getToken(t, "stu1", []string{role.RoleLearningStudent}), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name: "unknown course", body: marchallObj(t, map[string]string{"course_id": "nope"}),
			token: opsToken, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: content.ErrNotFound.Error()}),
		},
		{
			name: "chapters unlocked", body: body, token: opsToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"success": "chapters unlocked"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("unlock sticks", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/content/crs1/chapters", getToken(t, "stu1", []string{role.RoleLearningStudent}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var chapters []content.Chapter
		unmarchallObj(t, rec.Body.Bytes(), &chapters)
		for i, ch := range chapters {
			if ch.IsLocked {
				t.Errorf("Chapters[%d] still locked after enrollment", i)
			}
		}
	})
}

func Test_contentApi_delete(t *testing.T) {
	db.Reset()

	testutil.CreateRecordedContent(t, contentRepo, "crs1", "own1", testutil.Chapters("Intro"))

	t.Run("content-delete required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/content/crs1", getToken(t, "own1", []string{role.RoleTeachingTeacher}))
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("deleted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/content/crs1", getToken(t, "exec1", []string{role.RoleExecutiveOwner}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/content/crs1", getToken(t, "exec1", []string{role.RoleExecutiveOwner}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v after delete", rec.Code, http.StatusNotFound)
		}
	})
}

func Test_contentApi_roles(t *testing.T) {
	grantable := func(caller string) []role.Role {
		max := role.RolePriority(caller)
		var roles []role.Role
		for _, r := range role.Roles {
			if role.RolePriority(r.Value) <= max {
				roles = append(roles, r)
			}
		}
		return roles
	}

	tests := []httpTest{
		{
			name: "Staff required", token: getToken(t, "stu1", []string{role.RoleLearningStudent}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "executive owner sees all roles", token: getToken(t, "exec1", []string{role.RoleExecutiveOwner}),
			wantCode: http.StatusOK, wantData: marchallObj(t, role.Roles),
		},
		{
			name: "developer sees roles at or below their tier", token: getToken(t, "dev1", []string{role.RoleTechnicalDeveloper}),
			wantCode: http.StatusOK, wantData: marchallObj(t, grantable(role.RoleTechnicalDeveloper)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/roles", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

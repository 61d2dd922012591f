package echoapi

import "github.com/trezcool/darasa/core/content"

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	// CreateContentResponse carries the live session passcode, available
	// only once at creation time (it is stored hashed).
	CreateContentResponse struct {
		content.ContentRecord
		Passcode string `json:"passcode,omitempty"`
	}

	ReorderRequest struct {
		ChapterIDs []string `json:"chapter_ids" validate:"required,min=1"`
	}

	LockRequest struct {
		IsLocked *bool `json:"is_locked" validate:"required"`
	}

	VisibilityRequest struct {
		IsPublic *bool `json:"is_public" validate:"required"`
	}

	VisibilityResponse struct {
		IsPublic bool `json:"is_public"`
	}

	ContentTypeResponse struct {
		Type content.Type `json:"type"` // empty when the course has no content record
	}

	VideoRequest struct {
		URL         string `json:"url" validate:"required,url"`
		Filename    string `json:"filename" validate:"required"`
		Size        int64  `json:"size" validate:"required,min=1"`
		ContentType string `json:"content_type"`
	}

	UploadResponse struct {
		ID     string               `json:"id"`
		Status content.UploadStatus `json:"status"`
	}

	EnrollmentRequest struct {
		CourseID     string `json:"course_id" validate:"required"`
		StudentEmail string `json:"student_email" validate:"omitempty,email"`
	}

	PasscodeRequest struct {
		Passcode string `json:"passcode" validate:"required"`
	}
)

func (r VideoRequest) toRef() content.VideoRef {
	return content.VideoRef{
		URL:         r.URL,
		Filename:    r.Filename,
		Size:        r.Size,
		ContentType: r.ContentType,
	}
}

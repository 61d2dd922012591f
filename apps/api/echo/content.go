package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/content"
	"github.com/trezcool/darasa/core/role"
)

type contentApi struct {
	svc      *content.Service
	validate *validator.Validate
	logger   core.Logger
}

func registerContentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *content.Service,
	validate *validator.Validate,
	logger core.Logger,
) {
	api := contentApi{
		svc:      svc,
		validate: validate,
		logger:   logger,
	}

	cg := g.Group("/content", jwt)
	cg.POST("", api.create, requireAction(role.ActionContentCreate))
	cg.GET("", api.query, staffMiddleware())

	// detail endpoints
	dg := cg.Group("/:courseID")
	dg.GET("", api.retrieve, requireAction(role.ActionContentView))
	dg.DELETE("", api.destroy, requireAction(role.ActionContentDelete))
	dg.GET("/type", api.contentType, requireAction(role.ActionContentView))
	dg.GET("/chapters", api.queryChapters, requireAction(role.ActionContentView))
	dg.POST("/chapters", api.addChapter)
	dg.PUT("/chapters/order", api.reorderChapters)
	dg.DELETE("/chapters/:chapterID", api.deleteChapter)
	dg.PUT("/chapters/:chapterID/lock", api.setChapterLocked)
	dg.POST("/chapters/:chapterID/video", api.attachVideo)
	dg.GET("/visibility", api.getVisibility, requireAction(role.ActionContentView))
	dg.PUT("/visibility", api.setVisibility)
	dg.GET("/live", api.liveSessionInfo, requireAction(role.ActionContentView))
	dg.POST("/live/passcode-check", api.checkPasscode, requireAction(role.ActionContentView))

	// the enrollment collaborator notifies us here to trigger unlocks
	g.POST("/enrollments", api.handleEnrollment, jwt, requireAction(role.ActionUserManage))

	g.GET("/roles", api.queryRoles, jwt, staffMiddleware())
}

// authorizeEdit allows callers whose roles grant content-edit outright, or
// its self-scoped variant when they own the targeted course.
func (api *contentApi) authorizeEdit(ctx echo.Context, courseID string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	rec, err := api.svc.Get(ctx.Request().Context(), courseID)
	if err != nil {
		return err
	}
	owner := role.Ownership{CallerID: claims.Subject, OwnerID: rec.OwnerID}
	if !role.Evaluate(claims.Roles, role.ActionContentEdit, owner).Allowed() {
		return errHttpForbidden
	}
	return nil
}

// Handlers

func (api *contentApi) create(ctx echo.Context) error {
	var data content.NewContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContent")
	}
	if data.OwnerID == "" {
		if claims, err := getContextClaims(ctx); err == nil {
			data.OwnerID = claims.Subject
		}
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, passcode, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating content")
	}
	return ctx.JSON(http.StatusCreated, CreateContentResponse{ContentRecord: rec, Passcode: passcode})
}

func (api *contentApi) query(ctx echo.Context) error {
	recs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying content")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *contentApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.Get(ctx.Request().Context(), ctx.Param("courseID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *contentApi) destroy(ctx echo.Context) error {
	courseID := ctx.Param("courseID")
	if _, err := api.svc.Get(ctx.Request().Context(), courseID); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), courseID); err != nil {
		return errors.Wrap(err, "deleting content")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *contentApi) contentType(ctx echo.Context) error {
	typ, err := api.svc.ContentType(ctx.Request().Context(), ctx.Param("courseID"))
	if err != nil {
		return errors.Wrap(err, "getting content type")
	}
	return ctx.JSON(http.StatusOK, ContentTypeResponse{Type: typ})
}

func (api *contentApi) queryChapters(ctx echo.Context) error {
	chapters, err := api.svc.GetChapters(ctx.Request().Context(), ctx.Param("courseID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, chapters)
}

func (api *contentApi) addChapter(ctx echo.Context) error {
	courseID := ctx.Param("courseID")
	if err := api.authorizeEdit(ctx, courseID); err != nil {
		return err
	}

	var data content.NewChapter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChapter")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	chapter, err := api.svc.AddChapter(ctx.Request().Context(), courseID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, chapter)
}

func (api *contentApi) reorderChapters(ctx echo.Context) error {
	courseID := ctx.Param("courseID")
	if err := api.authorizeEdit(ctx, courseID); err != nil {
		return err
	}

	var data ReorderRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReorderRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	chapters, err := api.svc.ReorderChapters(ctx.Request().Context(), courseID, data.ChapterIDs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, chapters)
}

func (api *contentApi) deleteChapter(ctx echo.Context) error {
	courseID := ctx.Param("courseID")
	if err := api.authorizeEdit(ctx, courseID); err != nil {
		return err
	}

	chapters, err := api.svc.DeleteChapter(ctx.Request().Context(), courseID, ctx.Param("chapterID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, chapters)
}

func (api *contentApi) setChapterLocked(ctx echo.Context) error {
	courseID := ctx.Param("courseID")
	if err := api.authorizeEdit(ctx, courseID); err != nil {
		return err
	}

	var data LockRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LockRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	chapter, err := api.svc.SetChapterLocked(ctx.Request().Context(), courseID, ctx.Param("chapterID"), *data.IsLocked)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, chapter)
}

func (api *contentApi) attachVideo(ctx echo.Context) error {
	courseID := ctx.Param("courseID")
	chapterID := ctx.Param("chapterID")
	if err := api.authorizeEdit(ctx, courseID); err != nil {
		return err
	}

	var data VideoRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VideoRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	notify := func(up content.UploadResult) {
		if up.Err != nil {
			api.logger.Error(fmt.Sprintf("video upload %s failed", up.ID), up.Err, map[string]interface{}{
				"course_id":  up.CourseID,
				"chapter_id": up.ChapterID,
			})
			return
		}
		api.logger.Info(fmt.Sprintf("video upload %s %s", up.ID, up.Status))
	}

	up, err := api.svc.StartUpload(ctx.Request().Context(), courseID, chapterID, data.toRef(), notify)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusAccepted, UploadResponse{ID: up.ID, Status: up.Status})
}

func (api *contentApi) getVisibility(ctx echo.Context) error {
	isPublic, err := api.svc.IsPublic(ctx.Request().Context(), ctx.Param("courseID"))
	if err != nil {
		return errors.Wrap(err, "getting visibility")
	}
	return ctx.JSON(http.StatusOK, VisibilityResponse{IsPublic: isPublic})
}

func (api *contentApi) setVisibility(ctx echo.Context) error {
	courseID := ctx.Param("courseID")
	if err := api.authorizeEdit(ctx, courseID); err != nil {
		return err
	}

	var data VisibilityRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VisibilityRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	if err := api.svc.SetPublic(ctx.Request().Context(), courseID, *data.IsPublic); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, VisibilityResponse{IsPublic: *data.IsPublic})
}

func (api *contentApi) liveSessionInfo(ctx echo.Context) error {
	info, err := api.svc.LiveSessionInfo(ctx.Request().Context(), ctx.Param("courseID"), time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "getting live session info")
	}
	if info == nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *contentApi) checkPasscode(ctx echo.Context) error {
	var data PasscodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasscodeRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	if err := api.svc.CheckPasscode(ctx.Request().Context(), ctx.Param("courseID"), data.Passcode); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "passcode accepted"})
}

func (api *contentApi) handleEnrollment(ctx echo.Context) error {
	var data EnrollmentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollmentRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	if err := api.svc.HandleEnrollment(ctx.Request().Context(), data.CourseID, data.StudentEmail); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "chapters unlocked"})
}

// queryRoles feeds the admin portal's role picker. A caller may only
// grant roles at or below their own tier, so higher tiers are omitted.
func (api *contentApi) queryRoles(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	max := role.MaxRolePriority(claims.Roles)
	grantable := make([]role.Role, 0, len(role.Roles))
	for _, r := range role.Roles {
		if role.RolePriority(r.Value) <= max {
			grantable = append(grantable, r)
		}
	}
	return ctx.JSON(http.StatusOK, grantable)
}

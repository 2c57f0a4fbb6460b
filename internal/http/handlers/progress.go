package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/progress"
	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ProgressService interface {
	Get(ctx context.Context, userID, courseID string) (progress.Progress, error)
	MarkLesson(ctx context.Context, userID, courseID, lessonID string, completed bool) (progress.Progress, error)
}

type ProgressHandler struct {
	progress ProgressService
	log      *slog.Logger
}

func NewProgressHandler(svc ProgressService, log *slog.Logger) *ProgressHandler {
	return &ProgressHandler{progress: svc, log: log}
}

// GET /api/courses/:id/progress
func (h *ProgressHandler) Get(ctx *gin.Context) {
	userID, ok := userIDOrAbort(ctx)
	if !ok {
		return
	}

	courseID := ctx.Param("id")
	ctx.Set(middlewares.CtxCourseID, courseID)

	p, err := h.progress.Get(ctx.Request.Context(), userID, courseID)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// PUT /api/courses/:id/progress
func (h *ProgressHandler) MarkLesson(ctx *gin.Context) {
	userID, ok := userIDOrAbort(ctx)
	if !ok {
		return
	}

	courseID := ctx.Param("id")
	ctx.Set(middlewares.CtxCourseID, courseID)

	var req progress.MarkLessonRequest
	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.progress.MarkLesson(ctx.Request.Context(), userID, courseID, req.LessonID, *req.Completed)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

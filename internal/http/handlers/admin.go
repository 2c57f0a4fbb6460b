package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/job"
	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ReconcileScheduler interface {
	Enqueue(ctx context.Context, courseID, actorID string) (job.Job, error)
}

type JobReader interface {
	GetJob(ctx context.Context, id string) (job.Job, error)
}

type AdminHandler struct {
	reconciler ReconcileScheduler
	jobs       JobReader
	log        *slog.Logger
}

func NewAdminHandler(reconciler ReconcileScheduler, jobs JobReader, log *slog.Logger) *AdminHandler {
	return &AdminHandler{reconciler: reconciler, jobs: jobs, log: log}
}

// POST /api/admin/courses/:id/reconcile
func (h *AdminHandler) ReconcileCourse(ctx *gin.Context) {
	actorID, ok := userIDOrAbort(ctx)
	if !ok {
		return
	}

	courseID := ctx.Param("id")
	ctx.Set(middlewares.CtxCourseID, courseID)

	j, err := h.reconciler.Enqueue(ctx.Request.Context(), courseID, actorID)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"jobId": j.ID})
}

// GET /api/admin/jobs/:id
func (h *AdminHandler) GetJob(ctx *gin.Context) {
	j, err := h.jobs.GetJob(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, j)
}

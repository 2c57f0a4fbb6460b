package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type Enroller interface {
	Enroll(ctx context.Context, userID, courseID string) (enrollment.Enrollment, error)
}

type EnrollmentsHandler struct {
	enroller Enroller
	log      *slog.Logger
}

func NewEnrollmentsHandler(enroller Enroller, log *slog.Logger) *EnrollmentsHandler {
	return &EnrollmentsHandler{enroller: enroller, log: log}
}

// POST /api/courses/:id/enroll
func (h *EnrollmentsHandler) Enroll(ctx *gin.Context) {
	userID, ok := userIDOrAbort(ctx)
	if !ok {
		return
	}

	courseID := ctx.Param("id")
	ctx.Set(middlewares.CtxCourseID, courseID)

	e, err := h.enroller.Enroll(ctx.Request.Context(), userID, courseID)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":      "Successfully enrolled in course",
		"enrollmentId": e.ID,
	})
}

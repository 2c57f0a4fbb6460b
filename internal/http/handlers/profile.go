package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/learning"
	"github.com/gin-gonic/gin"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (learning.ProfileView, error)
	EnrolledCourses(ctx context.Context, userID string) ([]enrollment.EnrolledCourse, error)
	Update(ctx context.Context, userID string, req user.UpdateProfileRequest) (user.User, error)
}

type ProfileHandler struct {
	profiles ProfileService
	log      *slog.Logger
}

func NewProfileHandler(profiles ProfileService, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log}
}

// GET /api/profile
func (h *ProfileHandler) Get(ctx *gin.Context) {
	userID, ok := userIDOrAbort(ctx)
	if !ok {
		return
	}

	view, err := h.profiles.Get(ctx.Request.Context(), userID)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}

// PUT /api/profile
func (h *ProfileHandler) Update(ctx *gin.Context) {
	userID, ok := userIDOrAbort(ctx)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.profiles.Update(ctx.Request.Context(), userID, req)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    u,
	})
}

// GET /api/enrolled-courses
func (h *ProfileHandler) EnrolledCourses(ctx *gin.Context) {
	userID, ok := userIDOrAbort(ctx)
	if !ok {
		return
	}

	courses, err := h.profiles.EnrolledCourses(ctx.Request.Context(), userID)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, courses)
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	"github.com/geocoder89/learnhub/internal/domain/job"
	"github.com/geocoder89/learnhub/internal/domain/progress"
	"github.com/geocoder89/learnhub/internal/domain/review"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/geocoder89/learnhub/internal/learning"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// domainErrors is checked in order with errors.Is.
var domainErrors = []errorMapping{
	{review.ErrInvalidRating, http.StatusBadRequest, "invalid_rating", "Rating must be between 1 and 5"},
	{review.ErrEmptyComment, http.StatusBadRequest, "invalid_comment", "Rating and comment are required"},
	{learning.ErrInvalidInput, http.StatusBadRequest, "invalid_request", "All fields are required"},
	{learning.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"},
	{course.ErrNotFound, http.StatusNotFound, "not_found", "Course not found"},
	{user.ErrNotFound, http.StatusNotFound, "not_found", "User not found"},
	{enrollment.ErrNotEnrolled, http.StatusNotFound, "not_enrolled", "Not enrolled in this course"},
	{progress.ErrLessonNotFound, http.StatusNotFound, "not_found", "Lesson not found"},
	{progress.ErrNotFound, http.StatusNotFound, "not_found", "Progress not found"},
	{job.ErrJobNotFound, http.StatusNotFound, "not_found", "Job not found"},
	{user.ErrEmailTaken, http.StatusConflict, "email_taken", "User already exists with this email"},
	{enrollment.ErrAlreadyEnrolled, http.StatusConflict, "already_enrolled", "Already enrolled in this course"},
	{review.ErrDuplicate, http.StatusConflict, "duplicate_review", "You have already reviewed this course"},
}

// RespondDomainError maps err to its status and code. Unknown errors are
// logged with the request id and reported as a bare 500.
func RespondDomainError(ctx *gin.Context, log *slog.Logger, err error) {
	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			RespondError(ctx, m.status, m.code, m.message, nil)
			return
		}
	}

	if log == nil {
		log = slog.Default()
	}
	log.ErrorContext(ctx.Request.Context(), "request failed",
		"route", ctx.FullPath(), "request_id", requestIDFrom(ctx), "err", err)
	RespondInternal(ctx, "Internal server error")
}

// userIDOrAbort reads the authenticated user id set by RequireAuth.
func userIDOrAbort(ctx *gin.Context) (string, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Access token required")
		return "", false
	}
	return id, true
}

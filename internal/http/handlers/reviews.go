package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/review"
	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ReviewService interface {
	Submit(ctx context.Context, userID, courseID string, rating int, comment string) (review.Review, error)
	List(ctx context.Context, courseID string) ([]review.WithAuthor, error)
}

type ReviewsHandler struct {
	reviews ReviewService
	log     *slog.Logger
}

func NewReviewsHandler(reviews ReviewService, log *slog.Logger) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviews, log: log}
}

// POST /api/courses/:id/reviews
func (h *ReviewsHandler) Submit(ctx *gin.Context) {
	userID, ok := userIDOrAbort(ctx)
	if !ok {
		return
	}

	courseID := ctx.Param("id")
	ctx.Set(middlewares.CtxCourseID, courseID)

	var req review.SubmitRequest
	if !BindJSON(ctx, &req) {
		return
	}

	r, err := h.reviews.Submit(ctx.Request.Context(), userID, courseID, *req.Rating, req.Comment)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Review submitted successfully",
		"reviewId": r.ID,
	})
}

// GET /api/courses/:id/reviews
func (h *ReviewsHandler) List(ctx *gin.Context) {
	courseID := ctx.Param("id")
	ctx.Set(middlewares.CtxCourseID, courseID)

	reviews, err := h.reviews.List(ctx.Request.Context(), courseID)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, reviews)
}

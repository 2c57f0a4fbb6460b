package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type CourseCatalog interface {
	FindCourses(ctx context.Context, f course.ListFilter) ([]course.Course, error)
	GetCourse(ctx context.Context, id string) (course.Course, error)
	CreateCourse(ctx context.Context, req course.CreateCourseRequest) (course.Course, error)
}

type CoursesHandler struct {
	catalog CourseCatalog
	log     *slog.Logger
}

func NewCoursesHandler(catalog CourseCatalog, log *slog.Logger) *CoursesHandler {
	return &CoursesHandler{catalog: catalog, log: log}
}

type listCoursesQuery struct {
	Category *string  `form:"category"`
	Search   *string  `form:"search"`
	Level    *string  `form:"level"`
	MinPrice *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
}

// GET /api/courses?category&search&level&minPrice&maxPrice
func (h *CoursesHandler) List(ctx *gin.Context) {
	var q listCoursesQuery

	if !BindQuery(ctx, &q) {
		return
	}

	courses, err := h.catalog.FindCourses(ctx.Request.Context(), course.ListFilter{
		Category: q.Category,
		Search:   q.Search,
		Level:    q.Level,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
	})
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, courses)
}

// GET /api/courses/:id
func (h *CoursesHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	ctx.Set(middlewares.CtxCourseID, id)

	c, err := h.catalog.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, c)
}

// POST /api/courses
func (h *CoursesHandler) Create(ctx *gin.Context) {
	var req course.CreateCourseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	c, err := h.catalog.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/geocoder89/learnhub/internal/cache"
	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/geocoder89/learnhub/internal/repo"
)

const (
	listGenerationKey = "catalog:list:gen"
	listKeyPrefix     = "catalog:lists:"
)

// Catalog serves course reads through a read-through cache. Cache errors
// are logged and fall through to the store; they never fail a request.
type Catalog struct {
	store repo.Store
	cache cache.Store
	prom  *observability.Prom
	log   *slog.Logger
}

// NewCatalog builds a Catalog. A nil cache disables caching.
func NewCatalog(store repo.Store, c cache.Store, prom *observability.Prom, log *slog.Logger) *Catalog {
	return &Catalog{store: store, cache: c, prom: prom, log: loggerOrDefault(log)}
}

// FindCourses returns published courses matching every set filter, newest
// first, without lessons.
func (c *Catalog) FindCourses(ctx context.Context, f course.ListFilter) ([]course.Course, error) {
	key, cacheable := c.listKey(ctx, f)

	if cacheable {
		var cached []course.Course
		if c.lookup(ctx, "list", key, &cached) {
			return cached, nil
		}
	}

	courses, err := c.store.FindCourses(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find courses: %w", err)
	}

	if cacheable {
		c.put(ctx, key, courses)
	}
	return courses, nil
}

// GetCourse returns a published course with its lessons.
func (c *Catalog) GetCourse(ctx context.Context, id string) (course.Course, error) {
	key := courseKey(id)

	var cached course.Course
	if c.lookup(ctx, "course", key, &cached) {
		return cached, nil
	}

	crs, err := c.store.GetCourse(ctx, id)
	if err != nil {
		return course.Course{}, err
	}
	if !crs.IsPublished {
		return course.Course{}, course.ErrNotFound
	}

	c.put(ctx, key, crs)
	return crs, nil
}

func (c *Catalog) CreateCourse(ctx context.Context, req course.CreateCourseRequest) (course.Course, error) {
	crs := course.NewFromCreateRequest(req)

	if err := c.store.CreateCourse(ctx, crs); err != nil {
		return course.Course{}, fmt.Errorf("create course: %w", err)
	}

	c.bumpListGeneration(ctx)
	c.log.InfoContext(ctx, "course created", "course_id", crs.ID, "category", crs.Category)
	return crs, nil
}

// Invalidate drops the cached detail for courseID and every cached listing.
func (c *Catalog) Invalidate(ctx context.Context, courseID string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, courseKey(courseID)); err != nil {
		c.log.WarnContext(ctx, "cache delete failed", "course_id", courseID, "err", err)
	}
	c.bumpListGeneration(ctx)
}

func (c *Catalog) bumpListGeneration(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if _, err := c.cache.Incr(ctx, listGenerationKey); err != nil {
		c.log.WarnContext(ctx, "cache generation bump failed", "err", err)
	}
	// listings from older generations are unreachable now
	if err := c.cache.DeletePrefix(ctx, listKeyPrefix); err != nil {
		c.log.WarnContext(ctx, "cache listing purge failed", "err", err)
	}
}

// listKey embeds the current list generation, so a listing computed before
// a bump can never be served after it.
func (c *Catalog) listKey(ctx context.Context, f course.ListFilter) (string, bool) {
	if c.cache == nil {
		return "", false
	}

	gen := "0"
	raw, ok, err := c.cache.Get(ctx, listGenerationKey)
	if err != nil {
		c.log.WarnContext(ctx, "cache generation read failed", "err", err)
		return "", false
	}
	if ok {
		gen = string(raw)
	}

	var b strings.Builder
	b.WriteString(listKeyPrefix)
	b.WriteString(gen)
	b.WriteString(":c=")
	b.WriteString(f.CategoryFilter())
	b.WriteString("|l=")
	b.WriteString(f.LevelFilter())
	b.WriteString("|q=")
	b.WriteString(strings.ToLower(f.SearchTerm()))
	b.WriteString("|min=")
	b.WriteString(formatBound(f.MinPrice))
	b.WriteString("|max=")
	b.WriteString(formatBound(f.MaxPrice))

	return b.String(), true
}

func (c *Catalog) lookup(ctx context.Context, kind, key string, dst any) bool {
	if c.cache == nil {
		return false
	}

	raw, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.observeCache(kind, "error")
		c.log.WarnContext(ctx, "cache get failed", "key", key, "err", err)
		return false
	case !ok:
		c.observeCache(kind, "miss")
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.observeCache(kind, "error")
		return false
	}

	c.observeCache(kind, "hit")
	return true
}

func (c *Catalog) put(ctx context.Context, key string, v any) {
	if c.cache == nil {
		return
	}

	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, b); err != nil {
		c.log.WarnContext(ctx, "cache set failed", "key", key, "err", err)
	}
}

func (c *Catalog) observeCache(kind, result string) {
	if c.prom != nil {
		c.prom.ObserveCache(kind, result)
	}
}

func courseKey(id string) string { return "catalog:course:" + id }

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

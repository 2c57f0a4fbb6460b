package course

import (
	"errors"
	"strings"
	"time"
)

type Category string

const (
	CategoryProgramming Category = "programming"
	CategoryDesign      Category = "design"
	CategoryBusiness    Category = "business"
	CategoryMarketing   Category = "marketing"
	CategoryDataScience Category = "data-science"
	CategoryOther       Category = "other"
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

var ErrNotFound = errors.New("course not found")

type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
	Content  string `json:"content,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Order    int    `json:"order"`
}

// Course is the catalog record. Rating, Reviews and Students are derived
// from the review and enrollment sets and only ever written by the server.
type Course struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Instructor       string    `json:"instructor"`
	Category         Category  `json:"category"`
	Level            Level     `json:"level"`
	Price            float64   `json:"price"`
	OriginalPrice    *float64  `json:"originalPrice,omitempty"`
	Duration         string    `json:"duration"`
	Image            string    `json:"image"`
	Rating           float64   `json:"rating"`
	Reviews          int       `json:"reviews"`
	Students         int       `json:"students"`
	Lessons          []Lesson  `json:"lessons,omitempty"`
	Requirements     []string  `json:"requirements"`
	WhatYouWillLearn []string  `json:"whatYouWillLearn"`
	IsPublished      bool      `json:"isPublished"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Summary is the profile-page projection of a course.
type Summary struct {
	CourseID   string    `json:"courseId"`
	Title      string    `json:"title"`
	Instructor string    `json:"instructor"`
	Image      string    `json:"image"`
	Rating     float64   `json:"rating"`
	EnrolledAt time.Time `json:"enrolledAt"`
	Progress   int       `json:"progress"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Category *string
	Search   *string
	Level    *string
	MinPrice *float64
	MaxPrice *float64
}

// CategoryFilter returns the category to match, or "" when the filter is
// absent or "all".
func (f ListFilter) CategoryFilter() string {
	if f.Category == nil {
		return ""
	}
	c := strings.TrimSpace(*f.Category)
	if c == "" || strings.EqualFold(c, "all") {
		return ""
	}
	return c
}

func (f ListFilter) SearchTerm() string {
	if f.Search == nil {
		return ""
	}
	return strings.TrimSpace(*f.Search)
}

func (f ListFilter) LevelFilter() string {
	if f.Level == nil {
		return ""
	}
	return strings.TrimSpace(*f.Level)
}

// LikePattern builds a case-folded %term% pattern with LIKE wildcards
// escaped; use it with ESCAPE '\'.
func LikePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

type LessonInput struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Duration string `json:"duration" binding:"omitempty,max=40"`
	Content  string `json:"content" binding:"omitempty,max=20000"`
	VideoURL string `json:"videoUrl" binding:"omitempty,max=500"`
	Order    int    `json:"order" binding:"omitempty,min=0"`
}

// CreateCourseRequest deliberately has no rating, reviews or students.
type CreateCourseRequest struct {
	Title            string        `json:"title" binding:"required,min=3,max=200"`
	Description      string        `json:"description" binding:"required,min=1,max=5000"`
	Instructor       string        `json:"instructor" binding:"required,min=1,max=120"`
	Category         string        `json:"category" binding:"required,oneof=programming design business marketing data-science other"`
	Level            string        `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Price            *float64      `json:"price" binding:"required,min=0"`
	OriginalPrice    *float64      `json:"originalPrice" binding:"omitempty,min=0"`
	Duration         string        `json:"duration" binding:"omitempty,max=40"`
	Image            string        `json:"image" binding:"omitempty,max=500"`
	Lessons          []LessonInput `json:"lessons" binding:"omitempty,dive"`
	Requirements     []string      `json:"requirements" binding:"omitempty,dive,max=300"`
	WhatYouWillLearn []string      `json:"whatYouWillLearn" binding:"omitempty,dive,max=300"`
	IsPublished      *bool         `json:"isPublished"`
}

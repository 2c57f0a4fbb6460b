package course

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateCourseRequest) Course {
	now := time.Now().UTC()

	level := Level(req.Level)
	if level == "" {
		level = LevelBeginner
	}

	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}

	var price float64
	if req.Price != nil {
		price = *req.Price
	}

	lessons := make([]Lesson, 0, len(req.Lessons))
	for i, l := range req.Lessons {
		order := l.Order
		if order == 0 {
			order = i + 1
		}
		lessons = append(lessons, Lesson{
			ID:       uuid.NewString(),
			Title:    l.Title,
			Duration: l.Duration,
			Content:  l.Content,
			VideoURL: l.VideoURL,
			Order:    order,
		})
	}

	return Course{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Description:      req.Description,
		Instructor:       req.Instructor,
		Category:         Category(req.Category),
		Level:            level,
		Price:            price,
		OriginalPrice:    req.OriginalPrice,
		Duration:         req.Duration,
		Image:            req.Image,
		Lessons:          lessons,
		Requirements:     nonNil(req.Requirements),
		WhatYouWillLearn: nonNil(req.WhatYouWillLearn),
		IsPublished:      published,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// HasLesson reports whether lessonID belongs to the course.
func (c Course) HasLesson(lessonID string) bool {
	for _, l := range c.Lessons {
		if l.ID == lessonID {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package db

import (
	"context"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/repo"
	"github.com/google/uuid"
)

type sampleCourse struct {
	title, description, instructor string
	category                       course.Category
	level                          course.Level
	price                          float64
	originalPrice                  float64
	duration, image                string
}

var sampleCourses = []sampleCourse{
	{
		title:         "Complete JavaScript Bootcamp",
		description:   "Master JavaScript from basics to advanced concepts. Learn ES6+, async programming, DOM manipulation, and modern frameworks.",
		instructor:    "John Smith",
		category:      course.CategoryProgramming,
		level:         course.LevelBeginner,
		price:         89.99,
		originalPrice: 149.99,
		duration:      "40 hours",
		image:         "https://images.pexels.com/photos/2004161/pexels-photo-2004161.jpeg?auto=compress&cs=tinysrgb&w=400",
	},
	{
		title:         "UI/UX Design Masterclass",
		description:   "Learn modern UI/UX design principles, user research, wireframing, prototyping, and design systems using Figma.",
		instructor:    "Sarah Johnson",
		category:      course.CategoryDesign,
		level:         course.LevelIntermediate,
		price:         79.99,
		originalPrice: 129.99,
		duration:      "35 hours",
		image:         "https://images.pexels.com/photos/196644/pexels-photo-196644.jpeg?auto=compress&cs=tinysrgb&w=400",
	},
	{
		title:       "Digital Marketing Strategy",
		description: "Comprehensive guide to digital marketing including SEO, social media, content marketing, and analytics.",
		instructor:  "Mike Brown",
		category:    course.CategoryMarketing,
		level:       course.LevelBeginner,
		price:       69.99,
		duration:    "28 hours",
		image:       "https://images.pexels.com/photos/270408/pexels-photo-270408.jpeg?auto=compress&cs=tinysrgb&w=400",
	},
	{
		title:         "Business Strategy & Leadership",
		description:   "Essential business strategy, leadership skills, team management, and organizational development.",
		instructor:    "Emily Davis",
		category:      course.CategoryBusiness,
		level:         course.LevelAdvanced,
		price:         99.99,
		originalPrice: 179.99,
		duration:      "50 hours",
		image:         "https://images.pexels.com/photos/3184339/pexels-photo-3184339.jpeg?auto=compress&cs=tinysrgb&w=400",
	},
	{
		title:       "Python for Data Science",
		description: "Learn Python programming for data analysis, machine learning, and data visualization using pandas, numpy, and matplotlib.",
		instructor:  "Dr. Robert Wilson",
		category:    course.CategoryProgramming,
		level:       course.LevelIntermediate,
		price:       94.99,
		duration:    "45 hours",
		image:       "https://images.pexels.com/photos/574071/pexels-photo-574071.jpeg?auto=compress&cs=tinysrgb&w=400",
	},
	{
		title:         "Graphic Design Fundamentals",
		description:   "Master the basics of graphic design, typography, color theory, and layout using Adobe Creative Suite.",
		instructor:    "Lisa Anderson",
		category:      course.CategoryDesign,
		level:         course.LevelBeginner,
		price:         59.99,
		originalPrice: 99.99,
		duration:      "32 hours",
		image:         "https://images.pexels.com/photos/196644/pexels-photo-196644.jpeg?auto=compress&cs=tinysrgb&w=400",
	},
}

// SeedCourses inserts the sample catalog into an empty store and reports how
// many courses it wrote. Derived counters start at zero; they only move
// through enrollments and reviews.
func SeedCourses(ctx context.Context, store repo.Store) (int, error) {
	n, err := store.CountCourses(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	base := time.Now().UTC()
	for i, s := range sampleCourses {
		// distinct timestamps keep newest-first ordering stable
		ts := base.Add(time.Duration(i) * time.Millisecond)

		c := course.Course{
			ID:               uuid.NewString(),
			Title:            s.title,
			Description:      s.description,
			Instructor:       s.instructor,
			Category:         s.category,
			Level:            s.level,
			Price:            s.price,
			Duration:         s.duration,
			Image:            s.image,
			Lessons:          []course.Lesson{},
			Requirements:     []string{},
			WhatYouWillLearn: []string{},
			IsPublished:      true,
			CreatedAt:        ts,
			UpdatedAt:        ts,
		}
		if s.originalPrice > 0 {
			op := s.originalPrice
			c.OriginalPrice = &op
		}

		if err := store.CreateCourse(ctx, c); err != nil {
			return i, err
		}
	}

	return len(sampleCourses), nil
}

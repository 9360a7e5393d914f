// Package models defines server-side data models persisted in the database.
package models

import "time"

// Section is a titled group of lessons within a course.
type Section struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	Title     string    `json:"title"`
	OrderNo   int       `json:"orderNo"`
	CreatedAt time.Time `json:"createdAt"`
}

// Lesson is a single unit of content. URL and PublicID point at the
// lesson's media in object storage and are empty when none is attached.
type Lesson struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"courseId"`
	SectionID  string    `json:"sectionId"`
	Title      string    `json:"title"`
	LessonType string    `json:"lessonType"`
	ShortDesc  string    `json:"shortDesc"`
	URL        string    `json:"url"`
	PublicID   string    `json:"publicId"`
	OrderNo    int       `json:"orderNo"`
	IsVisible  bool      `json:"isVisible"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LessonPatch carries the mutable lesson fields.
type LessonPatch struct {
	Title     string
	ShortDesc string
	URL       string
	PublicID  string
}

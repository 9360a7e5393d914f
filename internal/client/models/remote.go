package models

import "time"

// RemoteSection is a section as returned by the backend.
type RemoteSection struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId,omitempty"`
	Title     string    `json:"title"`
	OrderNo   int       `json:"orderNo"`
	CreatedAt time.Time `json:"createdAt"`
}

// RemoteLesson is a lesson as returned by the backend.
type RemoteLesson struct {
	ID         string     `json:"id"`
	SectionID  string     `json:"sectionId,omitempty"`
	Title      string     `json:"title"`
	LessonType LessonType `json:"lessonType"`
	ShortDesc  string     `json:"shortDesc"`
	URL        string     `json:"url"`
	PublicID   string     `json:"publicId"`
	OrderNo    int        `json:"orderNo"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Media returns the lesson's media reference, or nil if none is attached.
func (r RemoteLesson) Media() *MediaReference {
	if r.URL == "" && r.PublicID == "" {
		return nil
	}
	return &MediaReference{URL: r.URL, PublicID: r.PublicID}
}

// NewSectionRequest is the create payload for a section.
type NewSectionRequest struct {
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	OrderNo  int    `json:"orderNo"`
}

// UpdateSectionRequest is the update payload for a section.
type UpdateSectionRequest struct {
	Title string `json:"title"`
}

// NewLessonRequest is the create payload for a lesson.
type NewLessonRequest struct {
	CourseID   string     `json:"courseId"`
	SectionID  string     `json:"sectionId"`
	Title      string     `json:"title"`
	ShortDesc  string     `json:"shortDesc"`
	OrderNo    int        `json:"orderNo"`
	LessonType LessonType `json:"lessonType"`
	URL        string     `json:"url"`
	PublicID   string     `json:"publicId"`
	IsVisible  bool       `json:"isVisible"`
}

// UpdateLessonRequest is the update payload for a lesson. Type and order
// are fixed after creation.
type UpdateLessonRequest struct {
	Title     string `json:"title"`
	ShortDesc string `json:"shortDesc"`
	URL       string `json:"url"`
	PublicID  string `json:"publicId"`
}

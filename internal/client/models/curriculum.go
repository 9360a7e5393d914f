package models

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
)

// LessonType classifies lesson content.
type LessonType string

const (
	LessonTypeVideo LessonType = common.LessonTypeVideo
	LessonTypeFile  LessonType = common.LessonTypeFile
)

func ParseLessonType(s string) (LessonType, error) {
	switch LessonType(strings.ToUpper(strings.TrimSpace(s))) {
	case LessonTypeVideo:
		return LessonTypeVideo, nil
	case LessonTypeFile:
		return LessonTypeFile, nil
	default:
		return "", common.NewValidationError("lessonType", fmt.Sprintf("unknown lesson type %q", s))
	}
}

// MediaReference points at an externally hosted asset. PublicID is the
// handle used to delete it.
type MediaReference struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// MediaFile is a binary payload ready to be uploaded. Body is rewound
// before every attempt, so it must be seekable.
type MediaFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// Section is a titled group of lessons within a course.
type Section struct {
	ID Identity
	// Title is the current (possibly unsaved) title.
	Title string
	// SavedTitle is the title the backend holds; empty for unsaved nodes.
	SavedTitle    string
	OrderNo       int
	Status        NodeStatus
	LessonsLoaded bool
	Lessons       []Lesson
	// LastError is the message of the most recent failed save or delete.
	LastError string
}

// IsEditing reports whether the section title editor is open.
func (s Section) IsEditing() bool { return s.Status.IsEditing() }

// Clone returns a copy that shares no slices with s.
func (s Section) Clone() Section {
	if s.Lessons != nil {
		lessons := make([]Lesson, len(s.Lessons))
		copy(lessons, s.Lessons)
		s.Lessons = lessons
	}
	return s
}

// FindLesson returns the index of the lesson with the given local id.
func (s Section) FindLesson(localID string) (int, bool) {
	for i, l := range s.Lessons {
		if l.ID.LocalID() == localID {
			return i, true
		}
	}
	return -1, false
}

// LessonContent holds the editable fields of a lesson.
type LessonContent struct {
	Title     string
	ShortDesc string
	Type      LessonType
	Media     *MediaReference
}

// Lesson is a single unit of content within a section.
type Lesson struct {
	ID      Identity
	Content LessonContent
	// Saved is the content the backend holds; zero for unsaved nodes.
	Saved     LessonContent
	OrderNo   int
	Status    NodeStatus
	LastError string
}

func (l Lesson) IsEditing() bool { return l.Status.IsEditing() }

// StagedMedia returns the current media reference when it differs from the
// one the backend record points to, i.e. an upload not yet committed.
func (l Lesson) StagedMedia() *MediaReference {
	if l.Content.Media == nil {
		return nil
	}
	if l.Saved.Media != nil && *l.Saved.Media == *l.Content.Media {
		return nil
	}
	return l.Content.Media
}

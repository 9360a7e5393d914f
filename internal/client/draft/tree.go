// Package draft holds the in-memory curriculum tree being edited.
//
// A Tree is an immutable value: every operation returns a new Tree and
// leaves its receiver untouched, copying only the path it changes. The
// Store swaps whole trees and publishes each new snapshot to subscribers.
package draft

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/common"
)

// Tree is a snapshot of a course curriculum. Sections are kept in display
// order; new sections are added at the head.
type Tree struct {
	CourseID string
	Version  uint64
	sections []models.Section
}

func NewTree(courseID string) Tree {
	return Tree{CourseID: courseID}
}

// Sections returns a copy of the section list.
func (t Tree) Sections() []models.Section {
	out := make([]models.Section, len(t.sections))
	for i, s := range t.sections {
		out[i] = s.Clone()
	}
	return out
}

// Len returns the number of sections.
func (t Tree) Len() int { return len(t.sections) }

func (t Tree) indexOf(localID string) (int, error) {
	for i, s := range t.sections {
		if s.ID.LocalID() == localID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("section %s: %w", localID, common.ErrNotFound)
}

// Section returns the section with the given local id.
func (t Tree) Section(localID string) (models.Section, error) {
	i, err := t.indexOf(localID)
	if err != nil {
		return models.Section{}, err
	}
	return t.sections[i].Clone(), nil
}

// Lesson returns the lesson with the given local id and its section.
func (t Tree) Lesson(sectionLocalID, lessonLocalID string) (models.Section, models.Lesson, error) {
	s, err := t.Section(sectionLocalID)
	if err != nil {
		return models.Section{}, models.Lesson{}, err
	}
	j, ok := s.FindLesson(lessonLocalID)
	if !ok {
		return models.Section{}, models.Lesson{}, fmt.Errorf("lesson %s: %w", lessonLocalID, common.ErrNotFound)
	}
	return s, s.Lessons[j], nil
}

// TitleTaken reports whether another section already uses title, compared
// case-insensitively after trimming. A section with an uncommitted rename
// still holds its saved title.
func (t Tree) TitleTaken(title, exceptLocalID string) bool {
	want := strings.ToLower(strings.TrimSpace(title))
	for _, s := range t.sections {
		if s.ID.LocalID() == exceptLocalID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(s.Title)) == want {
			return true
		}
		if s.SavedTitle != "" && strings.ToLower(strings.TrimSpace(s.SavedTitle)) == want {
			return true
		}
	}
	return false
}

func (t Tree) with(sections []models.Section) Tree {
	return Tree{CourseID: t.CourseID, Version: t.Version, sections: sections}
}

// SetSections replaces the whole section list.
func (t Tree) SetSections(sections []models.Section) Tree {
	out := make([]models.Section, len(sections))
	for i, s := range sections {
		out[i] = s.Clone()
	}
	return t.with(out)
}

// AddSection inserts s at the head of the list.
func (t Tree) AddSection(s models.Section) Tree {
	out := make([]models.Section, 0, len(t.sections)+1)
	out = append(out, s.Clone())
	out = append(out, t.sections...)
	return t.with(out)
}

// ReplaceSection swaps in s, matched by local id.
func (t Tree) ReplaceSection(s models.Section) (Tree, error) {
	i, err := t.indexOf(s.ID.LocalID())
	if err != nil {
		return t, err
	}
	out := make([]models.Section, len(t.sections))
	copy(out, t.sections)
	out[i] = s.Clone()
	return t.with(out), nil
}

// UpdateSection applies fn to a copy of the section and swaps it in.
func (t Tree) UpdateSection(localID string, fn func(*models.Section)) (Tree, error) {
	s, err := t.Section(localID)
	if err != nil {
		return t, err
	}
	fn(&s)
	return t.ReplaceSection(s)
}

// RemoveSection drops the section and, with it, its lessons.
func (t Tree) RemoveSection(localID string) (Tree, error) {
	i, err := t.indexOf(localID)
	if err != nil {
		return t, err
	}
	out := make([]models.Section, 0, len(t.sections)-1)
	out = append(out, t.sections[:i]...)
	out = append(out, t.sections[i+1:]...)
	return t.with(out), nil
}

// WithLessons sets the lessons of a section and marks them loaded.
func (t Tree) WithLessons(sectionLocalID string, lessons []models.Lesson) (Tree, error) {
	return t.UpdateSection(sectionLocalID, func(s *models.Section) {
		s.Lessons = append([]models.Lesson(nil), lessons...)
		s.LessonsLoaded = true
	})
}

// AddLesson appends l to the section's lessons.
func (t Tree) AddLesson(sectionLocalID string, l models.Lesson) (Tree, error) {
	return t.UpdateSection(sectionLocalID, func(s *models.Section) {
		s.Lessons = append(s.Lessons, l)
	})
}

// ReplaceLesson swaps in l, matched by local id.
func (t Tree) ReplaceLesson(sectionLocalID string, l models.Lesson) (Tree, error) {
	var missing bool
	nt, err := t.UpdateSection(sectionLocalID, func(s *models.Section) {
		j, ok := s.FindLesson(l.ID.LocalID())
		if !ok {
			missing = true
			return
		}
		s.Lessons[j] = l
	})
	if err != nil {
		return t, err
	}
	if missing {
		return t, fmt.Errorf("lesson %s: %w", l.ID.LocalID(), common.ErrNotFound)
	}
	return nt, nil
}

// UpdateLesson applies fn to a copy of the lesson and swaps it in.
func (t Tree) UpdateLesson(sectionLocalID, lessonLocalID string, fn func(*models.Lesson)) (Tree, error) {
	_, l, err := t.Lesson(sectionLocalID, lessonLocalID)
	if err != nil {
		return t, err
	}
	fn(&l)
	return t.ReplaceLesson(sectionLocalID, l)
}

// RemoveLesson drops the lesson from its section.
func (t Tree) RemoveLesson(sectionLocalID, lessonLocalID string) (Tree, error) {
	var missing bool
	nt, err := t.UpdateSection(sectionLocalID, func(s *models.Section) {
		j, ok := s.FindLesson(lessonLocalID)
		if !ok {
			missing = true
			return
		}
		s.Lessons = append(s.Lessons[:j], s.Lessons[j+1:]...)
	})
	if err != nil {
		return t, err
	}
	if missing {
		return t, fmt.Errorf("lesson %s: %w", lessonLocalID, common.ErrNotFound)
	}
	return nt, nil
}

// Package reconcile binds draft nodes to the identifiers the backend assigns
// on first save.
package reconcile

import (
	"fmt"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/common"
)

// Created is what the backend answers to a create request.
type Created struct {
	BackendID string
	OrderNo   int
}

// Section returns s bound to its backend id and marked persisted. The saved
// title becomes the current title. A section that already has a backend id
// is never re-created.
func Section(s models.Section, c Created) (models.Section, error) {
	if _, ok := models.BackendID(s.ID); ok {
		return s, fmt.Errorf("section %s: %w", s.ID.LocalID(), common.ErrAlreadyPersisted)
	}
	if c.BackendID == "" {
		return s, fmt.Errorf("section %s: empty backend id: %w", s.ID.LocalID(), common.ErrInternal)
	}

	s = s.Clone()
	s.ID = models.Persisted{Local: s.ID.LocalID(), Backend: c.BackendID}
	s.OrderNo = c.OrderNo
	s.SavedTitle = s.Title
	s.Status = models.StatusPersisted
	s.LastError = ""
	// a brand-new section has no lessons on the backend
	s.LessonsLoaded = true
	return s, nil
}

// Lesson returns l bound to its backend id and marked persisted.
func Lesson(l models.Lesson, c Created) (models.Lesson, error) {
	if _, ok := models.BackendID(l.ID); ok {
		return l, fmt.Errorf("lesson %s: %w", l.ID.LocalID(), common.ErrAlreadyPersisted)
	}
	if c.BackendID == "" {
		return l, fmt.Errorf("lesson %s: empty backend id: %w", l.ID.LocalID(), common.ErrInternal)
	}

	l.ID = models.Persisted{Local: l.ID.LocalID(), Backend: c.BackendID}
	l.OrderNo = c.OrderNo
	l.Saved = l.Content
	l.Status = models.StatusPersisted
	l.LastError = ""
	return l, nil
}

// Address returns the backend id every mutation of an existing node must
// target, or ErrNotFound if the node was never saved.
func Address(id models.Identity) (string, error) {
	b, ok := models.BackendID(id)
	if !ok {
		return "", fmt.Errorf("node %s has no backend id: %w", id.LocalID(), common.ErrNotFound)
	}
	return b, nil
}

// RequireParent returns the parent section's backend id or
// ErrParentNotPersisted. Lesson operations call it before any network I/O.
func RequireParent(s models.Section) (string, error) {
	b, ok := models.BackendID(s.ID)
	if !ok {
		return "", fmt.Errorf("section %s: %w", s.ID.LocalID(), common.ErrParentNotPersisted)
	}
	return b, nil
}

// FromRemoteSection builds a persisted, closed section from a backend row.
func FromRemoteSection(r models.RemoteSection) models.Section {
	return models.Section{
		ID:         models.Persisted{Local: models.NewLocalID(), Backend: r.ID},
		Title:      r.Title,
		SavedTitle: r.Title,
		OrderNo:    r.OrderNo,
		Status:     models.StatusPersisted,
	}
}

// FromRemoteLesson builds a persisted, closed lesson from a backend row.
func FromRemoteLesson(r models.RemoteLesson) models.Lesson {
	content := models.LessonContent{
		Title:     r.Title,
		ShortDesc: r.ShortDesc,
		Type:      r.LessonType,
		Media:     r.Media(),
	}
	saved := content
	if content.Media != nil {
		m := *content.Media
		saved.Media = &m
	}
	return models.Lesson{
		ID:      models.Persisted{Local: models.NewLocalID(), Backend: r.ID},
		Content: content,
		Saved:   saved,
		OrderNo: r.OrderNo,
		Status:  models.StatusPersisted,
	}
}

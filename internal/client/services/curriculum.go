// Package services contains the application services of the coursekeeper
// client. CurriculumService is the curriculum synchronization engine: it
// keeps the author's draft tree of sections and lessons consistent with the
// backend while saves, deletes and media uploads are in flight.
package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/coursekeeper/internal/client/client"
	"github.com/dmitrijs2005/coursekeeper/internal/client/draft"
	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/client/ordering"
	"github.com/dmitrijs2005/coursekeeper/internal/client/savecoord"
	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/logging"
)

// MediaManager uploads and releases lesson media. *assets.Manager
// implements it.
type MediaManager interface {
	Upload(ctx context.Context, file models.MediaFile) (models.MediaReference, error)
	Release(ctx context.Context, ref models.MediaReference) error
	Attach(ctx context.Context, ref models.MediaReference)
	Sweep(ctx context.Context) (int, error)
}

// ConfirmFunc asks the author to confirm a destructive action.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Outcome is the result of a mutating call: the affected node, the tree
// after the call and non-blocking problems such as failed media releases.
type Outcome struct {
	LocalID  string
	Tree     draft.Tree
	Warnings []error
}

// LessonPatch lists lesson fields to change; nil fields stay as they are.
type LessonPatch struct {
	Title     *string
	ShortDesc *string
	Type      *models.LessonType
}

// CurriculumService edits the curriculum of one course.
//
// Contract:
//   - Section and lesson ids in arguments are local ids from the tree.
//   - Validation, ErrParentNotPersisted and ErrBusy are returned before any
//     network request is made.
//   - A failed save leaves the node in its editor with LastError set.
//   - Deletions ask ConfirmFunc first; a refusal returns ErrCancelled.
//
// Safe for concurrent use.
type CurriculumService interface {
	Snapshot() draft.Tree
	Subscribe(l draft.Listener) (unsubscribe func())
	Busy(scope savecoord.Scope) bool

	LoadSections(ctx context.Context) (Outcome, error)
	Reload(ctx context.Context) (Outcome, error)
	AddSection(ctx context.Context) (Outcome, error)
	EditSection(ctx context.Context, sectionID string) (Outcome, error)
	RenameSection(ctx context.Context, sectionID, title string) (Outcome, error)
	CommitSection(ctx context.Context, sectionID string) (Outcome, error)
	CancelSection(ctx context.Context, sectionID string) (Outcome, error)
	DeleteSection(ctx context.Context, sectionID string) (Outcome, error)

	LoadLessonsForSection(ctx context.Context, sectionID string) (Outcome, error)
	AddLesson(ctx context.Context, sectionID string, lessonType models.LessonType) (Outcome, error)
	UpdateLesson(ctx context.Context, sectionID, lessonID string, patch LessonPatch) (Outcome, error)
	AttachMedia(ctx context.Context, sectionID, lessonID string, file models.MediaFile) (Outcome, error)
	RemoveMedia(ctx context.Context, sectionID, lessonID string) (Outcome, error)
	CommitLesson(ctx context.Context, sectionID, lessonID string) (Outcome, error)
	DiscardLesson(ctx context.Context, sectionID, lessonID string) (Outcome, error)
	DeleteLesson(ctx context.Context, sectionID, lessonID string) (Outcome, error)

	SweepUploads(ctx context.Context) (int, error)
}

// Option configures a CurriculumService.
type Option func(*curriculumService)

func WithLogger(l logging.Logger) Option {
	return func(s *curriculumService) { s.log = l }
}

func WithConfirm(fn ConfirmFunc) Option {
	return func(s *curriculumService) { s.confirm = fn }
}

type curriculumService struct {
	course  models.Course
	backend client.Client
	media   MediaManager
	order   *ordering.Assigner
	saves   *savecoord.Coordinator
	store   *draft.Store
	loads   singleflight.Group
	confirm ConfirmFunc
	log     logging.Logger
}

// NewCurriculumService returns the engine for course. The course must
// already exist on the backend.
func NewCurriculumService(course models.Course, backend client.Client, media MediaManager, opts ...Option) (CurriculumService, error) {
	if course.ID == "" {
		return nil, fmt.Errorf("curriculum for %q: %w", course.Title, common.ErrCourseNotPersisted)
	}

	s := &curriculumService{
		course:  course,
		backend: backend,
		media:   media,
		order:   ordering.NewAssigner(backend),
		saves:   savecoord.New(),
		store:   draft.NewStore(course.ID),
		confirm: func(context.Context, string) bool { return true },
		log:     logging.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("course_id", course.ID)
	return s, nil
}

func (s *curriculumService) Snapshot() draft.Tree {
	return s.store.Snapshot()
}

func (s *curriculumService) Subscribe(l draft.Listener) func() {
	return s.store.Subscribe(l)
}

func (s *curriculumService) Busy(scope savecoord.Scope) bool {
	return s.saves.Busy(scope)
}

func (s *curriculumService) SweepUploads(ctx context.Context) (int, error) {
	return s.media.Sweep(ctx)
}

func (s *curriculumService) outcome(localID string, warnings []error) Outcome {
	return Outcome{LocalID: localID, Tree: s.store.Snapshot(), Warnings: warnings}
}

// release frees ref best-effort and appends a failure to warnings.
func (s *curriculumService) release(ctx context.Context, ref *models.MediaReference, warnings []error) []error {
	if ref == nil {
		return warnings
	}
	if err := s.media.Release(ctx, *ref); err != nil {
		return append(warnings, err)
	}
	return warnings
}

// releaseAll frees refs best-effort. It returns the public ids that are gone.
func (s *curriculumService) releaseAll(ctx context.Context, refs []models.MediaReference, warnings []error) (map[string]bool, []error) {
	gone := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if err := s.media.Release(ctx, ref); err != nil {
			warnings = append(warnings, err)
			continue
		}
		gone[ref.PublicID] = true
	}
	return gone, warnings
}

// dropReleased clears media that a failed delete already released from the
// section's lessons. Persisted lessons reopen so the next commit clears the
// record's url and publicId.
func (s *curriculumService) dropReleased(sectionID string, gone map[string]bool) {
	if len(gone) == 0 {
		return
	}
	_, _ = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		return t.UpdateSection(sectionID, func(sec *models.Section) {
			for i := range sec.Lessons {
				forgetReleased(&sec.Lessons[i], gone)
			}
		})
	})
}

func forgetReleased(l *models.Lesson, gone map[string]bool) {
	hit := false
	if l.Content.Media != nil && gone[l.Content.Media.PublicID] {
		l.Content.Media = nil
		hit = true
	}
	if l.Saved.Media != nil && gone[l.Saved.Media.PublicID] {
		hit = true
	}
	if !hit {
		return
	}
	if l.Status == models.StatusPersisted {
		l.Status = models.StatusEditing
	}
	note := "media was released; commit to clear it from the lesson"
	if l.LastError != "" {
		note = l.LastError + "; " + note
	}
	l.LastError = note
}

func (s *curriculumService) ask(ctx context.Context, prompt string) error {
	if !s.confirm(ctx, prompt) {
		return common.ErrCancelled
	}
	return nil
}

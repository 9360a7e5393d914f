package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/coursekeeper/internal/client/draft"
	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/client/reconcile"
	"github.com/dmitrijs2005/coursekeeper/internal/client/savecoord"
	"github.com/dmitrijs2005/coursekeeper/internal/common"
)

var errAlreadyLoaded = errors.New("lessons already loaded")

// LoadLessonsForSection fetches a section's lessons once. Later calls are
// no-ops; concurrent calls share one backend request.
func (s *curriculumService) LoadLessonsForSection(ctx context.Context, sectionID string) (Outcome, error) {
	sec, err := s.store.Snapshot().Section(sectionID)
	if err != nil {
		return s.outcome(sectionID, nil), err
	}
	backendID, err := reconcile.RequireParent(sec)
	if err != nil {
		return s.outcome(sectionID, nil), err
	}
	if sec.LessonsLoaded {
		return s.outcome(sectionID, nil), nil
	}

	_, err, _ = s.loads.Do(sectionID, func() (any, error) {
		remote, err := s.backend.ListLessons(ctx, backendID)
		if err != nil {
			s.log.Error(ctx, "load lessons failed", "local_id", sectionID, "error", err)
			return nil, fmt.Errorf("load lessons: %w", err)
		}

		sort.SliceStable(remote, func(i, j int) bool { return remote[i].OrderNo < remote[j].OrderNo })
		lessons := make([]models.Lesson, len(remote))
		for i, r := range remote {
			lessons[i] = reconcile.FromRemoteLesson(r)
		}

		_, err = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
			cur, err := t.Section(sectionID)
			if err != nil {
				return t, err
			}
			if cur.LessonsLoaded {
				return t, errAlreadyLoaded
			}
			return t.WithLessons(sectionID, lessons)
		})
		if errors.Is(err, errAlreadyLoaded) {
			return nil, nil
		}
		s.log.Debug(ctx, "lessons loaded", "local_id", sectionID, "count", len(lessons))
		return nil, err
	})
	return s.outcome(sectionID, nil), err
}

// AddLesson opens a new lesson editor at the end of a saved section.
func (s *curriculumService) AddLesson(ctx context.Context, sectionID string, lessonType models.LessonType) (Outcome, error) {
	sec, err := s.store.Snapshot().Section(sectionID)
	if err != nil {
		return s.outcome("", nil), err
	}
	if _, err := reconcile.RequireParent(sec); err != nil {
		return s.outcome("", nil), err
	}
	if sec.Status == models.StatusDeleting {
		return s.outcome("", nil), common.ErrBusy
	}

	lt := models.LessonTypeVideo
	if lessonType != "" {
		if lt, err = models.ParseLessonType(string(lessonType)); err != nil {
			return s.outcome("", nil), err
		}
	}

	if !sec.LessonsLoaded {
		if _, err := s.LoadLessonsForSection(ctx, sectionID); err != nil {
			return s.outcome("", nil), err
		}
	}

	l := models.Lesson{
		ID:      models.NewUnsaved(),
		Content: models.LessonContent{Type: lt},
		Status:  models.StatusDraft,
	}
	_, err = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		return t.AddLesson(sectionID, l)
	})
	return s.outcome(l.ID.LocalID(), nil), err
}

// editLesson applies fn to an idle lesson, opening its editor if needed.
// fn may reject the change.
func (s *curriculumService) editLesson(sectionID, lessonID string, fn func(*models.Lesson) error) error {
	_, err := s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		_, l, err := t.Lesson(sectionID, lessonID)
		if err != nil {
			return t, err
		}
		if l.Status.InFlight() {
			return t, common.ErrBusy
		}
		if err := fn(&l); err != nil {
			return t, err
		}
		if l.Status == models.StatusPersisted {
			l.Status = models.StatusEditing
		}
		return t.ReplaceLesson(sectionID, l)
	})
	return err
}

func (s *curriculumService) UpdateLesson(ctx context.Context, sectionID, lessonID string, patch LessonPatch) (Outcome, error) {
	err := s.editLesson(sectionID, lessonID, func(l *models.Lesson) error {
		if patch.Type != nil && *patch.Type != l.Content.Type {
			lt, err := models.ParseLessonType(string(*patch.Type))
			if err != nil {
				return err
			}
			if _, ok := models.BackendID(l.ID); ok {
				return common.NewValidationError("lessonType", "the type of a saved lesson cannot change")
			}
			if lt != models.LessonTypeVideo && l.Content.Media != nil {
				return common.NewValidationError("lessonType", "remove the attached media first")
			}
			l.Content.Type = lt
		}
		if patch.Title != nil {
			l.Content.Title = *patch.Title
		}
		if patch.ShortDesc != nil {
			l.Content.ShortDesc = *patch.ShortDesc
		}
		return nil
	})
	return s.outcome(lessonID, nil), err
}

// AttachMedia uploads file and sets it as the lesson's media right away.
// A previously staged upload that the backend never saw is released.
func (s *curriculumService) AttachMedia(ctx context.Context, sectionID, lessonID string, file models.MediaFile) (Outcome, error) {
	_, l, err := s.store.Snapshot().Lesson(sectionID, lessonID)
	if err != nil {
		return s.outcome(lessonID, nil), err
	}
	if l.Status.InFlight() {
		return s.outcome(lessonID, nil), common.ErrBusy
	}
	if l.Content.Type != models.LessonTypeVideo {
		return s.outcome(lessonID, nil), common.NewValidationError("media", "only VIDEO lessons carry media")
	}

	ref, err := s.media.Upload(ctx, file)
	if err != nil {
		s.noteLessonError(sectionID, lessonID, err)
		return s.outcome(lessonID, nil), err
	}

	var previous *models.MediaReference
	err = s.editLesson(sectionID, lessonID, func(l *models.Lesson) error {
		previous = l.StagedMedia()
		uploaded := ref
		l.Content.Media = &uploaded
		l.LastError = ""
		return nil
	})
	if err != nil {
		// the lesson went away or got busy while uploading
		return s.outcome(lessonID, s.release(ctx, &ref, nil)), err
	}
	return s.outcome(lessonID, s.release(ctx, previous, nil)), nil
}

// RemoveMedia detaches the lesson's media. A staged upload is released now;
// media the backend record points to is released after the next commit.
func (s *curriculumService) RemoveMedia(ctx context.Context, sectionID, lessonID string) (Outcome, error) {
	var staged *models.MediaReference
	err := s.editLesson(sectionID, lessonID, func(l *models.Lesson) error {
		staged = l.StagedMedia()
		l.Content.Media = nil
		return nil
	})
	if err != nil {
		return s.outcome(lessonID, nil), err
	}
	return s.outcome(lessonID, s.release(ctx, staged, nil)), nil
}

func sameMedia(a, b *models.MediaReference) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameContent(a, b models.LessonContent) bool {
	return a.Title == b.Title && a.ShortDesc == b.ShortDesc && a.Type == b.Type && sameMedia(a.Media, b.Media)
}

// CommitLesson validates the lesson and creates or updates it on the
// backend. Lesson saves under one section never overlap.
func (s *curriculumService) CommitLesson(ctx context.Context, sectionID, lessonID string) (Outcome, error) {
	sec, l, err := s.store.Snapshot().Lesson(sectionID, lessonID)
	if err != nil {
		return s.outcome(lessonID, nil), err
	}
	parentID, err := reconcile.RequireParent(sec)
	if err != nil {
		return s.outcome(lessonID, nil), err
	}
	if l.Status.InFlight() {
		return s.outcome(lessonID, nil), common.ErrBusy
	}
	if !l.IsEditing() {
		return s.outcome(lessonID, nil), nil
	}

	if strings.TrimSpace(l.Content.Title) == "" {
		verr := common.NewValidationError("title", "lesson title must not be empty")
		s.noteLessonError(sectionID, lessonID, verr)
		return s.outcome(lessonID, nil), verr
	}

	_, persisted := models.BackendID(l.ID)
	if persisted && sameContent(trimmed(l.Content), l.Saved) {
		_, err := s.store.Update(func(t draft.Tree) (draft.Tree, error) {
			_, cur, err := t.Lesson(sectionID, lessonID)
			if err != nil {
				return t, err
			}
			if cur.Status.InFlight() {
				return t, common.ErrBusy
			}
			cur.Content = cur.Saved
			cur.Status = models.StatusPersisted
			cur.LastError = ""
			return t.ReplaceLesson(sectionID, cur)
		})
		return s.outcome(lessonID, nil), err
	}

	var warnings []error
	err = s.saves.TrySave(ctx, savecoord.LessonScope(sectionID), func(ctx context.Context) error {
		var err error
		warnings, err = s.saveLesson(ctx, sectionID, lessonID, parentID)
		return err
	})
	return s.outcome(lessonID, warnings), err
}

func trimmed(c models.LessonContent) models.LessonContent {
	c.Title = strings.TrimSpace(c.Title)
	c.ShortDesc = strings.TrimSpace(c.ShortDesc)
	return c
}

// markLesson moves an idle lesson to status and returns its prior state.
func (s *curriculumService) markLesson(sectionID, lessonID string, status models.NodeStatus) (models.Lesson, error) {
	var prev models.Lesson
	_, err := s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		_, l, err := t.Lesson(sectionID, lessonID)
		if err != nil {
			return t, err
		}
		if l.Status.InFlight() {
			return t, common.ErrBusy
		}
		prev = l
		l.Status = status
		return t.ReplaceLesson(sectionID, l)
	})
	return prev, err
}

func (s *curriculumService) saveLesson(ctx context.Context, sectionID, lessonID, parentID string) ([]error, error) {
	prev, err := s.markLesson(sectionID, lessonID, models.StatusSaving)
	if err != nil {
		return nil, err
	}
	content := trimmed(prev.Content)
	url, publicID := "", ""
	if content.Media != nil {
		url, publicID = content.Media.URL, content.Media.PublicID
	}

	if backendID, ok := models.BackendID(prev.ID); ok {
		_, err := s.backend.UpdateLesson(ctx, backendID, models.UpdateLessonRequest{
			Title:     content.Title,
			ShortDesc: content.ShortDesc,
			URL:       url,
			PublicID:  publicID,
		})
		if err != nil {
			s.failLesson(ctx, sectionID, lessonID, prev.Status, "update lesson", err)
			return nil, fmt.Errorf("update lesson: %w", err)
		}

		_, err = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
			return t.UpdateLesson(sectionID, lessonID, func(l *models.Lesson) {
				l.Content = content
				l.Saved = content
				l.Status = models.StatusPersisted
				l.LastError = ""
			})
		})
		s.log.Info(ctx, "lesson updated", "local_id", lessonID, "lesson_id", backendID)
		return s.settleMedia(ctx, prev.Saved.Media, content.Media), err
	}

	orderNo, err := s.order.NextLessonOrder(ctx, parentID)
	if err != nil {
		s.failLesson(ctx, sectionID, lessonID, prev.Status, "assign lesson order", err)
		return nil, err
	}

	created, err := s.backend.CreateLesson(ctx, models.NewLessonRequest{
		CourseID:   s.course.ID,
		SectionID:  parentID,
		Title:      content.Title,
		ShortDesc:  content.ShortDesc,
		OrderNo:    orderNo,
		LessonType: content.Type,
		URL:        url,
		PublicID:   publicID,
		IsVisible:  true,
	})
	if err != nil {
		s.failLesson(ctx, sectionID, lessonID, prev.Status, "create lesson", err)
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	if created.OrderNo == 0 {
		created.OrderNo = orderNo
	}

	_, err = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		_, cur, err := t.Lesson(sectionID, lessonID)
		if err != nil {
			return t, err
		}
		cur.Content = content
		bound, err := reconcile.Lesson(cur, reconcile.Created{BackendID: created.ID, OrderNo: created.OrderNo})
		if err != nil {
			return t, err
		}
		return t.ReplaceLesson(sectionID, bound)
	})
	if err != nil {
		s.failLesson(ctx, sectionID, lessonID, prev.Status, "bind lesson", err)
		return nil, err
	}
	s.log.Info(ctx, "lesson created", "local_id", lessonID, "lesson_id", created.ID, "order_no", created.OrderNo)
	return s.settleMedia(ctx, nil, content.Media), nil
}

// settleMedia runs after a successful lesson save: the new media is owned
// by the record now, and the media it replaced can go.
func (s *curriculumService) settleMedia(ctx context.Context, old, current *models.MediaReference) []error {
	if current != nil {
		s.media.Attach(ctx, *current)
	}
	if old != nil && !sameMedia(old, current) {
		return s.release(ctx, old, nil)
	}
	return nil
}

func (s *curriculumService) noteLessonError(sectionID, lessonID string, cause error) {
	_, _ = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		return t.UpdateLesson(sectionID, lessonID, func(l *models.Lesson) {
			l.LastError = cause.Error()
		})
	})
}

func (s *curriculumService) failLesson(ctx context.Context, sectionID, lessonID string, prev models.NodeStatus, op string, cause error) {
	s.log.Error(ctx, op+" failed", "local_id", lessonID, "error", cause)
	_, _ = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		return t.UpdateLesson(sectionID, lessonID, func(l *models.Lesson) {
			l.Status = prev
			l.LastError = cause.Error()
		})
	})
}

// DiscardLesson closes the lesson editor without saving. An unsaved lesson
// is dropped. Any staged upload is released.
func (s *curriculumService) DiscardLesson(ctx context.Context, sectionID, lessonID string) (Outcome, error) {
	var staged *models.MediaReference
	_, err := s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		_, l, err := t.Lesson(sectionID, lessonID)
		if err != nil {
			return t, err
		}
		staged = nil
		switch l.Status {
		case models.StatusSaving, models.StatusDeleting:
			return t, common.ErrBusy
		case models.StatusDraft:
			staged = l.StagedMedia()
			return t.RemoveLesson(sectionID, lessonID)
		case models.StatusEditing:
			staged = l.StagedMedia()
			l.Content = l.Saved
			l.Status = models.StatusPersisted
			l.LastError = ""
			return t.ReplaceLesson(sectionID, l)
		default:
			return t, nil
		}
	})
	if err != nil {
		return s.outcome(lessonID, nil), err
	}
	return s.outcome(lessonID, s.release(ctx, staged, nil)), nil
}

// DeleteLesson releases the lesson's media, deletes the backend record and
// then removes the lesson from the tree. A failed release does not stop
// the delete.
func (s *curriculumService) DeleteLesson(ctx context.Context, sectionID, lessonID string) (Outcome, error) {
	_, l, err := s.store.Snapshot().Lesson(sectionID, lessonID)
	if err != nil {
		return s.outcome(lessonID, nil), err
	}
	if l.Status.InFlight() {
		return s.outcome(lessonID, nil), common.ErrBusy
	}

	label := strings.TrimSpace(l.Content.Title)
	if label == "" {
		label = "untitled"
	}
	if err := s.ask(ctx, fmt.Sprintf("Delete lesson %q?", label)); err != nil {
		return s.outcome(lessonID, nil), err
	}

	var warnings []error
	remove := func(ctx context.Context) error {
		prev, err := s.markLesson(sectionID, lessonID, models.StatusDeleting)
		if err != nil {
			return err
		}

		var media []models.MediaReference
		if prev.Saved.Media != nil {
			media = append(media, *prev.Saved.Media)
		}
		if m := prev.StagedMedia(); m != nil {
			media = append(media, *m)
		}
		var gone map[string]bool
		gone, warnings = s.releaseAll(ctx, media, warnings)

		backendID, persisted := models.BackendID(prev.ID)
		if persisted {
			if err := s.backend.DeleteLesson(ctx, backendID); err != nil {
				s.failLesson(ctx, sectionID, lessonID, prev.Status, "delete lesson", err)
				s.dropReleased(sectionID, gone)
				return fmt.Errorf("delete lesson: %w", err)
			}
		}

		_, err = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
			return t.RemoveLesson(sectionID, lessonID)
		})
		s.log.Info(ctx, "lesson deleted", "local_id", lessonID, "persisted", persisted)
		return err
	}

	if _, persisted := models.BackendID(l.ID); persisted {
		err = s.saves.TrySave(ctx, savecoord.LessonScope(sectionID), remove)
	} else {
		err = remove(ctx)
	}
	return s.outcome(lessonID, warnings), err
}

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

func anyInFlight(t draft.Tree) bool {
	for _, sec := range t.Sections() {
		if sec.Status.InFlight() {
			return true
		}
		for _, l := range sec.Lessons {
			if l.Status.InFlight() {
				return true
			}
		}
	}
	return false
}

// mergeSections builds the section list from the backend rows. Unsaved
// drafts stay at the head; known backend ids keep their local id. When keep
// is set, matched sections keep their local state and only closed ones take
// the backend title.
func mergeSections(current []models.Section, remote []models.RemoteSection, keep bool) []models.Section {
	byBackend := make(map[string]models.Section, len(current))
	var out []models.Section
	for _, sec := range current {
		if b, ok := models.BackendID(sec.ID); ok {
			byBackend[b] = sec
			continue
		}
		out = append(out, sec)
	}

	sort.SliceStable(remote, func(i, j int) bool { return remote[i].OrderNo < remote[j].OrderNo })
	for _, r := range remote {
		fresh := reconcile.FromRemoteSection(r)
		old, ok := byBackend[r.ID]
		switch {
		case !ok:
			out = append(out, fresh)
		case keep:
			old.OrderNo = r.OrderNo
			old.SavedTitle = r.Title
			if !old.IsEditing() {
				old.Title = r.Title
			}
			out = append(out, old)
		default:
			fresh.ID = models.Persisted{Local: old.ID.LocalID(), Backend: r.ID}
			out = append(out, fresh)
		}
	}
	return out
}

// droppedStaged collects the staged uploads of persisted sections the
// backend no longer lists.
func droppedStaged(current []models.Section, remote []models.RemoteSection) []models.MediaReference {
	live := make(map[string]bool, len(remote))
	for _, r := range remote {
		live[r.ID] = true
	}
	var out []models.MediaReference
	for _, sec := range current {
		if b, ok := models.BackendID(sec.ID); !ok || live[b] {
			continue
		}
		for _, l := range sec.Lessons {
			if m := l.StagedMedia(); m != nil {
				out = append(out, *m)
			}
		}
	}
	return out
}

// LoadSections fetches the course's sections. Local drafts and open editors
// survive; persisted sections the backend no longer has are dropped and
// their staged uploads released.
func (s *curriculumService) LoadSections(ctx context.Context) (Outcome, error) {
	if anyInFlight(s.store.Snapshot()) {
		return s.outcome("", nil), common.ErrBusy
	}

	remote, err := s.backend.ListSections(ctx, s.course.ID)
	if err != nil {
		s.log.Error(ctx, "load sections failed", "error", err)
		return s.outcome("", nil), fmt.Errorf("load sections: %w", err)
	}

	var staged []models.MediaReference
	_, err = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		if anyInFlight(t) {
			return t, common.ErrBusy
		}
		current := t.Sections()
		staged = droppedStaged(current, remote)
		return t.SetSections(mergeSections(current, remote, true)), nil
	})
	if err != nil {
		return s.outcome("", nil), err
	}

	_, warnings := s.releaseAll(ctx, staged, nil)
	s.log.Debug(ctx, "sections loaded", "count", len(remote))
	return s.outcome("", warnings), nil
}

// Reload replaces every persisted node with the backend's state. Unsaved
// section drafts survive; lesson drafts and uncommitted edits are dropped
// and their staged uploads released. Lessons are re-fetched for sections
// that had them loaded.
func (s *curriculumService) Reload(ctx context.Context) (Outcome, error) {
	before := s.store.Snapshot()
	if anyInFlight(before) {
		return s.outcome("", nil), common.ErrBusy
	}

	remote, err := s.backend.ListSections(ctx, s.course.ID)
	if err != nil {
		s.log.Error(ctx, "reload failed", "error", err)
		return s.outcome("", nil), fmt.Errorf("reload sections: %w", err)
	}

	var staged []models.MediaReference
	var reloadLessons []string
	_, err = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		if anyInFlight(t) {
			return t, common.ErrBusy
		}
		staged, reloadLessons = nil, nil
		current := t.Sections()
		for _, sec := range current {
			for _, l := range sec.Lessons {
				if m := l.StagedMedia(); m != nil {
					staged = append(staged, *m)
				}
			}
			if sec.LessonsLoaded {
				if _, ok := models.BackendID(sec.ID); ok {
					reloadLessons = append(reloadLessons, sec.ID.LocalID())
				}
			}
		}
		return t.SetSections(mergeSections(current, remote, false)), nil
	})
	if err != nil {
		return s.outcome("", nil), err
	}

	var warnings []error
	for i := range staged {
		warnings = s.release(ctx, &staged[i], warnings)
	}

	var errs []error
	for _, id := range reloadLessons {
		if _, err := s.LoadLessonsForSection(ctx, id); err != nil && !errors.Is(err, common.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	s.log.Info(ctx, "curriculum reloaded", "sections", len(remote))
	return s.outcome("", warnings), errors.Join(errs...)
}

// AddSection opens a new, empty section editor at the head of the list.
func (s *curriculumService) AddSection(ctx context.Context) (Outcome, error) {
	sec := models.Section{
		ID:            models.NewUnsaved(),
		Status:        models.StatusDraft,
		LessonsLoaded: true,
	}
	_, err := s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		return t.AddSection(sec), nil
	})
	return s.outcome(sec.ID.LocalID(), nil), err
}

// editSection applies fn to an idle section, opening its editor if it was
// closed.
func (s *curriculumService) editSection(sectionID string, fn func(*models.Section)) error {
	_, err := s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		sec, err := t.Section(sectionID)
		if err != nil {
			return t, err
		}
		if sec.Status.InFlight() {
			return t, common.ErrBusy
		}
		if sec.Status == models.StatusPersisted {
			sec.Status = models.StatusEditing
		}
		fn(&sec)
		return t.ReplaceSection(sec)
	})
	return err
}

func (s *curriculumService) EditSection(ctx context.Context, sectionID string) (Outcome, error) {
	err := s.editSection(sectionID, func(*models.Section) {})
	return s.outcome(sectionID, nil), err
}

func (s *curriculumService) RenameSection(ctx context.Context, sectionID, title string) (Outcome, error) {
	err := s.editSection(sectionID, func(sec *models.Section) {
		sec.Title = title
	})
	return s.outcome(sectionID, nil), err
}

func validateSectionTitle(t draft.Tree, sec models.Section) error {
	title := strings.TrimSpace(sec.Title)
	if title == "" {
		return common.NewValidationError("title", "section title must not be empty")
	}
	if t.TitleTaken(title, sec.ID.LocalID()) {
		return common.NewValidationError("title", fmt.Sprintf("a section titled %q already exists", title))
	}
	return nil
}

// CommitSection validates the section title and creates or updates the
// section on the backend. Only one section save runs at a time per course.
func (s *curriculumService) CommitSection(ctx context.Context, sectionID string) (Outcome, error) {
	t := s.store.Snapshot()
	sec, err := t.Section(sectionID)
	if err != nil {
		return s.outcome(sectionID, nil), err
	}
	if sec.Status.InFlight() {
		return s.outcome(sectionID, nil), common.ErrBusy
	}
	if !sec.IsEditing() {
		return s.outcome(sectionID, nil), nil
	}

	if verr := validateSectionTitle(t, sec); verr != nil {
		s.noteSectionError(sectionID, verr)
		return s.outcome(sectionID, nil), verr
	}

	_, persisted := models.BackendID(sec.ID)
	if persisted && strings.TrimSpace(sec.Title) == sec.SavedTitle {
		err := s.editSection(sectionID, func(sec *models.Section) {
			sec.Title = sec.SavedTitle
			sec.Status = models.StatusPersisted
			sec.LastError = ""
		})
		return s.outcome(sectionID, nil), err
	}

	err = s.saves.TrySave(ctx, savecoord.SectionTitleScope(), func(ctx context.Context) error {
		return s.saveSection(ctx, sectionID)
	})
	return s.outcome(sectionID, nil), err
}

// markSection moves an idle section to status and returns its prior state.
func (s *curriculumService) markSection(sectionID string, status models.NodeStatus) (models.Section, error) {
	var prev models.Section
	_, err := s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		sec, err := t.Section(sectionID)
		if err != nil {
			return t, err
		}
		if sec.Status.InFlight() {
			return t, common.ErrBusy
		}
		prev = sec
		sec.Status = status
		return t.ReplaceSection(sec)
	})
	return prev, err
}

func (s *curriculumService) saveSection(ctx context.Context, sectionID string) error {
	prev, err := s.markSection(sectionID, models.StatusSaving)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(prev.Title)

	if backendID, ok := models.BackendID(prev.ID); ok {
		if _, err := s.backend.UpdateSection(ctx, backendID, models.UpdateSectionRequest{Title: title}); err != nil {
			s.failSection(ctx, sectionID, prev.Status, "update section", err)
			return fmt.Errorf("update section: %w", err)
		}
		_, err := s.store.Update(func(t draft.Tree) (draft.Tree, error) {
			return t.UpdateSection(sectionID, func(sec *models.Section) {
				sec.Title = title
				sec.SavedTitle = title
				sec.Status = models.StatusPersisted
				sec.LastError = ""
			})
		})
		s.log.Info(ctx, "section updated", "local_id", sectionID, "section_id", backendID)
		return err
	}

	orderNo, err := s.order.NextSectionOrder(ctx, s.course.ID)
	if err != nil {
		s.failSection(ctx, sectionID, prev.Status, "assign section order", err)
		return err
	}

	created, err := s.backend.CreateSection(ctx, models.NewSectionRequest{
		CourseID: s.course.ID,
		Title:    title,
		OrderNo:  orderNo,
	})
	if err != nil {
		s.failSection(ctx, sectionID, prev.Status, "create section", err)
		return fmt.Errorf("create section: %w", err)
	}
	if created.OrderNo == 0 {
		created.OrderNo = orderNo
	}

	_, err = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		cur, err := t.Section(sectionID)
		if err != nil {
			return t, err
		}
		cur.Title = title
		bound, err := reconcile.Section(cur, reconcile.Created{BackendID: created.ID, OrderNo: created.OrderNo})
		if err != nil {
			return t, err
		}
		return t.ReplaceSection(bound)
	})
	if err != nil {
		s.failSection(ctx, sectionID, prev.Status, "bind section", err)
		return err
	}
	s.log.Info(ctx, "section created", "local_id", sectionID, "section_id", created.ID, "order_no", created.OrderNo)
	return nil
}

func (s *curriculumService) noteSectionError(sectionID string, cause error) {
	_, _ = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		return t.UpdateSection(sectionID, func(sec *models.Section) {
			sec.LastError = cause.Error()
		})
	})
}

// failSection puts the section back to prev and records cause on it.
func (s *curriculumService) failSection(ctx context.Context, sectionID string, prev models.NodeStatus, op string, cause error) {
	s.log.Error(ctx, op+" failed", "local_id", sectionID, "error", cause)
	_, _ = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		return t.UpdateSection(sectionID, func(sec *models.Section) {
			sec.Status = prev
			sec.LastError = cause.Error()
		})
	})
}

// CancelSection closes the section editor. An unsaved section is dropped;
// a persisted one gets its saved title back.
func (s *curriculumService) CancelSection(ctx context.Context, sectionID string) (Outcome, error) {
	_, err := s.store.Update(func(t draft.Tree) (draft.Tree, error) {
		sec, err := t.Section(sectionID)
		if err != nil {
			return t, err
		}
		switch sec.Status {
		case models.StatusSaving, models.StatusDeleting:
			return t, common.ErrBusy
		case models.StatusDraft:
			return t.RemoveSection(sectionID)
		case models.StatusEditing:
			sec.Title = sec.SavedTitle
			sec.Status = models.StatusPersisted
			sec.LastError = ""
			return t.ReplaceSection(sec)
		default:
			return t, nil
		}
	})
	return s.outcome(sectionID, nil), err
}

// DeleteSection removes a section with all its lessons: lesson media is
// released best-effort, then the section record is deleted (the backend
// drops its lessons) and finally the local node goes.
func (s *curriculumService) DeleteSection(ctx context.Context, sectionID string) (Outcome, error) {
	sec, err := s.store.Snapshot().Section(sectionID)
	if err != nil {
		return s.outcome(sectionID, nil), err
	}
	if sec.Status.InFlight() {
		return s.outcome(sectionID, nil), common.ErrBusy
	}

	label := strings.TrimSpace(sec.Title)
	if label == "" {
		label = "untitled"
	}
	if err := s.ask(ctx, fmt.Sprintf("Delete section %q and all of its lessons?", label)); err != nil {
		return s.outcome(sectionID, nil), err
	}

	backendID, persisted := models.BackendID(sec.ID)
	if !persisted {
		_, err := s.store.Update(func(t draft.Tree) (draft.Tree, error) {
			cur, err := t.Section(sectionID)
			if err != nil {
				return t, err
			}
			if cur.Status.InFlight() {
				return t, common.ErrBusy
			}
			return t.RemoveSection(sectionID)
		})
		return s.outcome(sectionID, nil), err
	}

	var warnings []error
	err = s.saves.TrySave(ctx, savecoord.LessonScope(sectionID), func(ctx context.Context) error {
		prev, err := s.markSection(sectionID, models.StatusDeleting)
		if err != nil {
			return err
		}

		var media []models.MediaReference
		if prev.LessonsLoaded {
			for _, l := range prev.Lessons {
				if l.Saved.Media != nil {
					media = append(media, *l.Saved.Media)
				}
				if m := l.StagedMedia(); m != nil {
					media = append(media, *m)
				}
			}
		} else {
			remote, err := s.backend.ListLessons(ctx, backendID)
			if err != nil {
				s.failSection(ctx, sectionID, prev.Status, "list lessons for delete", err)
				return fmt.Errorf("list lessons: %w", err)
			}
			for _, r := range remote {
				if m := r.Media(); m != nil {
					media = append(media, *m)
				}
			}
		}

		var gone map[string]bool
		gone, warnings = s.releaseAll(ctx, media, warnings)

		if err := s.backend.DeleteSection(ctx, backendID); err != nil {
			s.failSection(ctx, sectionID, prev.Status, "delete section", err)
			s.dropReleased(sectionID, gone)
			return fmt.Errorf("delete section: %w", err)
		}

		_, err = s.store.Update(func(t draft.Tree) (draft.Tree, error) {
			return t.RemoveSection(sectionID)
		})
		s.log.Info(ctx, "section deleted", "local_id", sectionID, "section_id", backendID, "released", len(media)-len(warnings))
		return err
	})
	return s.outcome(sectionID, warnings), err
}

package httpapi

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/dmitrijs2005/coursekeeper/internal/server/models"
	"github.com/dmitrijs2005/coursekeeper/internal/server/services"
)

// memCurriculum keeps sections and lessons in maps and enforces the same
// order uniqueness as the database.
type memCurriculum struct {
	services.CurriculumService

	mu       sync.Mutex
	seq      int
	sections map[string]*models.Section
	lessons  map[string]*models.Lesson
	err      error
}

func newMemCurriculum() *memCurriculum {
	return &memCurriculum{sections: map[string]*models.Section{}, lessons: map[string]*models.Lesson{}}
}

func (m *memCurriculum) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memCurriculum) ListSections(ctx context.Context, courseID string) ([]*models.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*models.Section, 0)
	for _, s := range m.sections {
		if s.CourseID == courseID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNo < out[j].OrderNo })
	return out, nil
}

func (m *memCurriculum) CreateSection(ctx context.Context, in services.NewSection) (*models.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in.Title == "" {
		return nil, common.NewValidationError("title", "must not be empty")
	}
	for _, s := range m.sections {
		if s.CourseID == in.CourseID && s.OrderNo == in.OrderNo {
			return nil, fmt.Errorf("create section: %w", common.ErrOrderConflict)
		}
	}
	s := &models.Section{ID: m.nextID("s"), CourseID: in.CourseID, Title: in.Title, OrderNo: in.OrderNo, CreatedAt: time.Now()}
	m.sections[s.ID] = s
	cp := *s
	return &cp, nil
}

func (m *memCurriculum) UpdateSection(ctx context.Context, id string, in services.UpdateSection) (*models.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sections[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	s.Title = in.Title
	cp := *s
	return &cp, nil
}

func (m *memCurriculum) DeleteSection(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sections[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.sections, id)
	for lid, l := range m.lessons {
		if l.SectionID == id {
			delete(m.lessons, lid)
		}
	}
	return nil
}

func (m *memCurriculum) ListLessons(ctx context.Context, sectionID string) ([]*models.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sections[sectionID]; !ok {
		return nil, common.ErrNotFound
	}
	out := make([]*models.Lesson, 0)
	for _, l := range m.lessons {
		if l.SectionID == sectionID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNo < out[j].OrderNo })
	return out, nil
}

func (m *memCurriculum) CreateLesson(ctx context.Context, in services.NewLesson) (*models.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sections[in.SectionID]; !ok {
		return nil, common.ErrNotFound
	}
	for _, l := range m.lessons {
		if l.SectionID == in.SectionID && l.OrderNo == in.OrderNo {
			return nil, common.ErrOrderConflict
		}
	}
	l := &models.Lesson{
		ID: m.nextID("l"), CourseID: in.CourseID, SectionID: in.SectionID, Title: in.Title,
		LessonType: in.LessonType, ShortDesc: in.ShortDesc, URL: in.URL, PublicID: in.PublicID,
		OrderNo: in.OrderNo, IsVisible: in.IsVisible, CreatedAt: time.Now(),
	}
	m.lessons[l.ID] = l
	cp := *l
	return &cp, nil
}

func (m *memCurriculum) UpdateLesson(ctx context.Context, id string, in services.UpdateLesson) (*models.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	l.Title, l.ShortDesc, l.URL, l.PublicID = in.Title, in.ShortDesc, in.URL, in.PublicID
	cp := *l
	return &cp, nil
}

func (m *memCurriculum) DeleteLesson(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lessons[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.lessons, id)
	return nil
}

type memMedia struct {
	services.MediaService

	mu      sync.Mutex
	max     int64
	stored  map[string]string
	removed []string
	err     error
}

func newMemMedia(max int64) *memMedia {
	return &memMedia{max: max, stored: map[string]string{}}
}

func (m *memMedia) MaxUploadBytes() int64 { return m.max }

func (m *memMedia) Upload(ctx context.Context, files []services.MediaFile) ([]models.StoredMedia, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.StoredMedia, 0, len(files))
	for i, f := range files {
		b, err := io.ReadAll(f.Body)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("media/2026/03/07/%d-%s", i, f.Name)
		m.stored[key] = string(b)
		out = append(out, models.StoredMedia{URL: "https://cdn.example/" + key, PublicID: key})
	}
	return out, nil
}

func (m *memMedia) Remove(ctx context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if publicID == "" {
		return common.NewValidationError("publicId", "unknown media id")
	}
	m.removed = append(m.removed, publicID)
	delete(m.stored, publicID)
	return nil
}

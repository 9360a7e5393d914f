package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/coursekeeper/internal/client/client"
	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/common"
)

// fakeBackend is an in-memory curriculum backend that records calls and can
// be told to fail or block specific operations.
type fakeBackend struct {
	client.Client

	mu       sync.Mutex
	seq      int
	sections map[string]models.RemoteSection
	lessons  map[string]models.RemoteLesson
	files    map[string]bool
	calls    map[string]int
	events   []string
	fail     map[string]error
	gates    map[string]chan struct{}
	entered  chan string

	// onRemoveFile runs before RemoveFile answers.
	onRemoveFile func(publicID string)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		sections: map[string]models.RemoteSection{},
		lessons:  map[string]models.RemoteLesson{},
		files:    map[string]bool{},
		calls:    map[string]int{},
		fail:     map[string]error{},
		gates:    map[string]chan struct{}{},
		entered:  make(chan string, 64),
	}
}

func backendErr(kind error, msg string) error {
	return fmt.Errorf("%s: %w: %w", msg, common.ErrNetwork, kind)
}

// enter records op and applies the configured gate and failure.
func (f *fakeBackend) enter(op string) error {
	f.mu.Lock()
	f.calls[op]++
	f.events = append(f.events, op)
	gate := f.gates[op]
	err := f.fail[op]
	f.mu.Unlock()

	select {
	case f.entered <- op:
	default:
	}
	if gate != nil {
		select {
		case <-gate:
		case <-time.After(5 * time.Second):
			return backendErr(common.ErrInternal, "gate timeout")
		}
	}
	return err
}

func (f *fakeBackend) block(op string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[op] = ch
	return ch
}

func (f *fakeBackend) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) eventLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func (f *fakeBackend) id(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeBackend) seedSection(courseID, title string, orderNo int) models.RemoteSection {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := models.RemoteSection{ID: f.id("sec"), CourseID: courseID, Title: title, OrderNo: orderNo}
	f.sections[s.ID] = s
	return s
}

func (f *fakeBackend) seedLesson(sectionID, title string, orderNo int, media *models.MediaReference) models.RemoteLesson {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := models.RemoteLesson{ID: f.id("les"), SectionID: sectionID, Title: title, LessonType: models.LessonTypeVideo, OrderNo: orderNo}
	if media != nil {
		l.URL, l.PublicID = media.URL, media.PublicID
		f.files[media.PublicID] = true
	}
	f.lessons[l.ID] = l
	return l
}

func (f *fakeBackend) section(id string) (models.RemoteSection, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sections[id]
	return s, ok
}

func (f *fakeBackend) lesson(id string) (models.RemoteLesson, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lessons[id]
	return l, ok
}

func (f *fakeBackend) liveFiles() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]bool, len(f.files))
	for k, v := range f.files {
		out[k] = v
	}
	return out
}

func (f *fakeBackend) ListSections(ctx context.Context, courseID string) ([]models.RemoteSection, error) {
	if err := f.enter("ListSections"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RemoteSection
	for _, s := range f.sections {
		if s.CourseID == courseID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNo < out[j].OrderNo })
	return out, nil
}

func (f *fakeBackend) CreateSection(ctx context.Context, req models.NewSectionRequest) (models.RemoteSection, error) {
	if err := f.enter("CreateSection"); err != nil {
		return models.RemoteSection{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sections {
		if s.CourseID == req.CourseID && s.OrderNo == req.OrderNo {
			return models.RemoteSection{}, backendErr(common.ErrOrderConflict, "409 order taken")
		}
	}
	s := models.RemoteSection{ID: f.id("sec"), CourseID: req.CourseID, Title: req.Title, OrderNo: req.OrderNo}
	f.sections[s.ID] = s
	return s, nil
}

func (f *fakeBackend) UpdateSection(ctx context.Context, id string, req models.UpdateSectionRequest) (models.RemoteSection, error) {
	if err := f.enter("UpdateSection"); err != nil {
		return models.RemoteSection{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sections[id]
	if !ok {
		return models.RemoteSection{}, backendErr(common.ErrNotFound, "404")
	}
	s.Title = req.Title
	f.sections[id] = s
	return s, nil
}

func (f *fakeBackend) DeleteSection(ctx context.Context, id string) error {
	if err := f.enter("DeleteSection"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sections[id]; !ok {
		return backendErr(common.ErrNotFound, "404")
	}
	delete(f.sections, id)
	for lid, l := range f.lessons {
		if l.SectionID == id {
			delete(f.lessons, lid)
		}
	}
	return nil
}

func (f *fakeBackend) ListLessons(ctx context.Context, sectionID string) ([]models.RemoteLesson, error) {
	if err := f.enter("ListLessons"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RemoteLesson
	for _, l := range f.lessons {
		if l.SectionID == sectionID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNo < out[j].OrderNo })
	return out, nil
}

func (f *fakeBackend) CreateLesson(ctx context.Context, req models.NewLessonRequest) (models.RemoteLesson, error) {
	if err := f.enter("CreateLesson"); err != nil {
		return models.RemoteLesson{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sections[req.SectionID]; !ok {
		return models.RemoteLesson{}, backendErr(common.ErrNotFound, "404 section")
	}
	for _, l := range f.lessons {
		if l.SectionID == req.SectionID && l.OrderNo == req.OrderNo {
			return models.RemoteLesson{}, backendErr(common.ErrOrderConflict, "409 order taken")
		}
	}
	l := models.RemoteLesson{
		ID: f.id("les"), SectionID: req.SectionID, Title: req.Title, LessonType: req.LessonType,
		ShortDesc: req.ShortDesc, URL: req.URL, PublicID: req.PublicID, OrderNo: req.OrderNo,
	}
	f.lessons[l.ID] = l
	return l, nil
}

func (f *fakeBackend) UpdateLesson(ctx context.Context, id string, req models.UpdateLessonRequest) (models.RemoteLesson, error) {
	if err := f.enter("UpdateLesson"); err != nil {
		return models.RemoteLesson{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lessons[id]
	if !ok {
		return models.RemoteLesson{}, backendErr(common.ErrNotFound, "404")
	}
	l.Title, l.ShortDesc, l.URL, l.PublicID = req.Title, req.ShortDesc, req.URL, req.PublicID
	f.lessons[id] = l
	return l, nil
}

func (f *fakeBackend) DeleteLesson(ctx context.Context, id string) error {
	if err := f.enter("DeleteLesson"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lessons[id]; !ok {
		return backendErr(common.ErrNotFound, "404")
	}
	delete(f.lessons, id)
	return nil
}

func (f *fakeBackend) UploadFile(ctx context.Context, file models.MediaFile) (models.MediaReference, error) {
	if err := f.enter("UploadFile"); err != nil {
		return models.MediaReference{}, err
	}
	if file.Body != nil {
		_, _ = io.Copy(io.Discard, file.Body)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := "media/" + f.id(file.Name)
	f.files[id] = true
	return models.MediaReference{URL: "https://cdn.test/" + id, PublicID: id}, nil
}

func (f *fakeBackend) RemoveFile(ctx context.Context, publicID string) error {
	if f.onRemoveFile != nil {
		f.onRemoveFile(publicID)
	}
	if err := f.enter("RemoveFile"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, publicID)
	return nil
}

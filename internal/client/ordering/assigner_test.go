package ordering

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/common"
)

type fakeLister struct {
	SiblingLister
	sections []models.RemoteSection
	lessons  map[string][]models.RemoteLesson
	err      error
	calls    int
}

func (f *fakeLister) ListSections(ctx context.Context, courseID string) ([]models.RemoteSection, error) {
	f.calls++
	return f.sections, f.err
}

func (f *fakeLister) ListLessons(ctx context.Context, sectionID string) ([]models.RemoteLesson, error) {
	f.calls++
	return f.lessons[sectionID], f.err
}

func TestNext(t *testing.T) {
	tests := []struct {
		name   string
		orders []int
		want   int
	}{
		{"empty", nil, 1},
		{"contiguous", []int{1, 2, 3}, 4},
		{"gaps and unsorted", []int{5, 2, 9}, 10},
		{"non-positive ignored", []int{-3, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Next(tt.orders))
		})
	}
}

func TestNextSectionOrder_RequeriesEveryCall(t *testing.T) {
	f := &fakeLister{sections: []models.RemoteSection{{OrderNo: 1}, {OrderNo: 2}, {OrderNo: 3}}}
	a := NewAssigner(f)

	n, err := a.NextSectionOrder(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, 4, n)

	f.sections = append(f.sections, models.RemoteSection{OrderNo: 4})
	n, err = a.NextSectionOrder(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, 2, f.calls)
}

func TestNextLessonOrder(t *testing.T) {
	f := &fakeLister{lessons: map[string][]models.RemoteLesson{"s1": {{OrderNo: 2}}}}
	a := NewAssigner(f)

	n, err := a.NextLessonOrder(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = a.NextLessonOrder(context.Background(), "s2")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestNextOrder_PropagatesBackendError(t *testing.T) {
	f := &fakeLister{err: errors.Join(common.ErrNetwork, errors.New("dial"))}
	a := NewAssigner(f)

	_, err := a.NextSectionOrder(context.Background(), "c1")
	require.ErrorIs(t, err, common.ErrNetwork)
	_, err = a.NextLessonOrder(context.Background(), "s1")
	require.ErrorIs(t, err, common.ErrNetwork)
}

package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/coursekeeper/internal/client/models"
	"github.com/dmitrijs2005/coursekeeper/internal/common"
)

func TestSection_BindsBackendID(t *testing.T) {
	s := models.Section{ID: models.Unsaved{Local: "l1"}, Title: "Intro", Status: models.StatusSaving, LastError: "old"}

	got, err := Section(s, Created{BackendID: "b1", OrderNo: 1})
	require.NoError(t, err)

	assert.Equal(t, models.Persisted{Local: "l1", Backend: "b1"}, got.ID)
	assert.Equal(t, 1, got.OrderNo)
	assert.Equal(t, "Intro", got.SavedTitle)
	assert.Equal(t, models.StatusPersisted, got.Status)
	assert.False(t, got.IsEditing())
	assert.Empty(t, got.LastError)
	assert.True(t, got.LessonsLoaded)
}

func TestSection_RefusesPersisted(t *testing.T) {
	s := models.Section{ID: models.Persisted{Local: "l1", Backend: "b1"}}
	_, err := Section(s, Created{BackendID: "b2", OrderNo: 2})
	require.ErrorIs(t, err, common.ErrAlreadyPersisted)
}

func TestSection_RejectsEmptyBackendID(t *testing.T) {
	_, err := Section(models.Section{ID: models.Unsaved{Local: "l1"}}, Created{})
	require.ErrorIs(t, err, common.ErrInternal)
}

func TestLesson_BindsAndSnapshotsContent(t *testing.T) {
	media := &models.MediaReference{URL: "u", PublicID: "p"}
	l := models.Lesson{
		ID:      models.Unsaved{Local: "x"},
		Content: models.LessonContent{Title: "T", Type: models.LessonTypeVideo, Media: media},
	}

	got, err := Lesson(l, Created{BackendID: "b", OrderNo: 3})
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID.(models.Persisted).Backend)
	assert.Equal(t, got.Content, got.Saved)
	assert.Nil(t, got.StagedMedia())

	_, err = Lesson(got, Created{BackendID: "c", OrderNo: 4})
	require.ErrorIs(t, err, common.ErrAlreadyPersisted)
}

func TestAddressAndRequireParent(t *testing.T) {
	_, err := Address(models.Unsaved{Local: "a"})
	require.ErrorIs(t, err, common.ErrNotFound)

	id, err := Address(models.Persisted{Local: "a", Backend: "b"})
	require.NoError(t, err)
	require.Equal(t, "b", id)

	_, err = RequireParent(models.Section{ID: models.Unsaved{Local: "s"}})
	require.ErrorIs(t, err, common.ErrParentNotPersisted)

	id, err = RequireParent(models.Section{ID: models.Persisted{Local: "s", Backend: "sb"}})
	require.NoError(t, err)
	require.Equal(t, "sb", id)
}

func TestFromRemote(t *testing.T) {
	s := FromRemoteSection(models.RemoteSection{ID: "s1", Title: "Intro", OrderNo: 2})
	assert.Equal(t, "s1", s.ID.(models.Persisted).Backend)
	assert.Equal(t, "Intro", s.SavedTitle)
	assert.False(t, s.LessonsLoaded)

	l := FromRemoteLesson(models.RemoteLesson{ID: "l1", Title: "V", LessonType: models.LessonTypeVideo, URL: "u", PublicID: "p", OrderNo: 1})
	require.NotNil(t, l.Content.Media)
	assert.Nil(t, l.StagedMedia())
	l.Content.Media.URL = "changed"
	assert.Equal(t, "u", l.Saved.Media.URL, "saved media must not alias content media")
}

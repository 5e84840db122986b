package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockin-app/lockin-api/internal/models"
)

func TestStoreLoadNeverSaved(t *testing.T) {
	st := NewStore()

	for _, final := range []bool{false, true} {
		s := st.Load(final)
		require.NotNil(t, s)
		assert.Empty(t, s.Meetings)
		assert.Empty(t, s.Tasks)
		assert.Empty(t, s.CourseCodes)
	}
}

func TestStoreSaveAndLoadAreIsolated(t *testing.T) {
	st := NewStore()
	working := &models.Schedule{
		Meetings:    []models.Meeting{{ID: "m1", Description: "lecture"}},
		Tasks:       []models.Task{},
		CourseCodes: []string{"CS101"},
	}
	st.Save(working, false)

	// mutating the caller's copy must not leak into the store
	working.Meetings[0].Description = "changed"

	loaded := st.Load(false)
	assert.Equal(t, "lecture", loaded.Meetings[0].Description)

	// mutating a loaded copy must not leak either
	loaded.CourseCodes = append(loaded.CourseCodes, "MATH2")
	again := st.Load(false)
	assert.Equal(t, []string{"CS101"}, again.CourseCodes)

	// final instance stays empty until saved explicitly
	assert.Empty(t, st.Load(true).Meetings)
}

func TestStoreReset(t *testing.T) {
	st := NewStore()
	s := &models.Schedule{Meetings: []models.Meeting{{ID: "m1"}}}
	st.Save(s, false)
	st.Save(s, true)

	st.Reset()

	for _, final := range []bool{false, true} {
		loaded := st.Load(final)
		assert.Empty(t, loaded.Meetings)
		assert.Empty(t, loaded.Tasks)
		assert.Empty(t, loaded.CourseCodes)
	}
}

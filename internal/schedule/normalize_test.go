package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockin-app/lockin-api/internal/models"
)

func TestNormalizeTimeMeridiem(t *testing.T) {
	cases := map[string]string{
		"9:00am":   "09:00",
		"3:00pm":   "15:00",
		"12:00pm":  "12:00",
		"12:00am":  "00:00",
		"9 AM":     "09:00",
		"11:45 pm": "23:45",
		"noon":     "12:00",
		"midnight": "00:00",
		"Noon":     "12:00",
	}
	for input, expected := range cases {
		res := NormalizeTime(input)
		assert.Equal(t, TimeCanonical, res.Kind, "input %q", input)
		assert.Equal(t, expected, res.String(), "input %q", input)
	}
}

func TestNormalizeTimeAbsent(t *testing.T) {
	for _, input := range []string{"", "null", "None", "   "} {
		res := NormalizeTime(input)
		assert.Equal(t, TimeAbsent, res.Kind, "input %q", input)
		assert.Equal(t, "", res.String())
	}
}

func TestNormalizeTimeAmbiguous(t *testing.T) {
	for _, input := range []string{"9:00", "3", "12:00", "sometime after lunch", "25:00", "13:75"} {
		res := NormalizeTime(input)
		require.Equal(t, TimeAmbiguous, res.Kind, "input %q", input)
		assert.Equal(t, AmbiguousPrefix+input, res.String())
	}
}

func TestNormalizeTimePassThrough(t *testing.T) {
	for _, input := range []string{"15:00", "09:00", "23:59", "00:30"} {
		res := NormalizeTime(input)
		assert.Equal(t, TimeCanonical, res.Kind, "input %q", input)
	}
	assert.Equal(t, "15:00", NormalizeTime("15:00").String())
}

func TestNormalizeScheduleTimes(t *testing.T) {
	raw := "3:00pm"
	ambiguous := "9:00"
	day := "Monday"
	s := &models.Schedule{
		Meetings: []models.Meeting{
			{ID: "m1", Description: "lecture", Day: &day, Time: &raw},
			{ID: "m2", Description: "lab", Time: nil},
		},
		Tasks: []models.Task{
			{ID: "t1", Description: "reading", Time: &ambiguous},
		},
	}

	NormalizeScheduleTimes(s)

	require.NotNil(t, s.Meetings[0].Time)
	assert.Equal(t, "15:00", *s.Meetings[0].Time)
	assert.Nil(t, s.Meetings[1].Time)
	require.NotNil(t, s.Tasks[0].Time)
	assert.Equal(t, "AMBIGUOUS:9:00", *s.Tasks[0].Time)

	// nothing but time fields may change
	assert.Equal(t, "Monday", *s.Meetings[0].Day)
	assert.Equal(t, "lecture", s.Meetings[0].Description)
}

func TestNormalizeScheduleTimesKeepsExistingMarker(t *testing.T) {
	marked := "AMBIGUOUS:9:00"
	s := &models.Schedule{Meetings: []models.Meeting{{ID: "m1", Time: &marked}}}
	NormalizeScheduleTimes(s)
	assert.Equal(t, "AMBIGUOUS:9:00", *s.Meetings[0].Time)
}

package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univsched/unitimetable/internal/materialize"
	"github.com/univsched/unitimetable/internal/model"
)

func sampleTimetable() map[model.Slot][]materialize.Entry {
	return map[model.Slot][]materialize.Entry{
		{Day: 1, Period: 0}: {{
			LessonID: 1, GroupLabel: "IS-21", SubjectName: "Math", Kind: model.Lecture,
			InstructorName: "Ivanenko", RoomID: "101", Students: 25, Capacity: 30,
		}},
		{Day: 0, Period: 1}: {{
			LessonID: 2, GroupLabel: "IS-21 (Subgroup A)", SubjectName: "Math", Kind: model.Practical,
			InstructorName: "Ivanenko", RoomID: "102", Students: 13, Capacity: 20,
		}},
	}
}

func TestBuildDatasetSortsByDayThenPeriod(t *testing.T) {
	ds := BuildDataset("Even week", sampleTimetable())
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "IS-21 (Subgroup A)", ds.Rows[0].Groups, "day 0 period 1 sorts before day 1 period 0")
	assert.Equal(t, "IS-21", ds.Rows[1].Groups)
}

func TestWriteConsoleIncludesHeaderAndSummary(t *testing.T) {
	ds := BuildDataset("Even week", sampleTimetable())
	buf := &bytes.Buffer{}
	WriteConsole(buf, ds, 0.875, 3)

	out := buf.String()
	assert.True(t, strings.Contains(out, "Timeslot"))
	assert.True(t, strings.Contains(out, "Even week"))
	assert.True(t, strings.Contains(out, "fitness 0.8750, 3 gap(s)"))
}

func TestToCSVRoundTrips(t *testing.T) {
	ds := BuildDataset("Even week", sampleTimetable())
	out, err := ToCSV(ds)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Ivanenko")
	assert.Contains(t, string(out), "Timeslot")
}

func TestToPDFProducesNonEmptyDocument(t *testing.T) {
	ds := BuildDataset("Even week", sampleTimetable())
	out, err := ToPDF(ds)
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}

package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/univsched/unitimetable/internal/materialize"
	"github.com/univsched/unitimetable/internal/model"
)

func entry(lessonID int, kind model.LessonKind, group, instructor string, maxHours int) materialize.Entry {
	return materialize.Entry{
		LessonID: lessonID, Kind: kind, GroupLabel: group, InstructorID: instructor,
		InstructorName: instructor, InstructorMaxHours: maxHours,
		SubjectID: "MATH101", SubjectName: "Math", SubjectNumLectures: 1, SubjectNumPracticals: 1,
	}
}

func TestEvaluateTimetablePerfectScoreIsOne(t *testing.T) {
	tt := materialize.NewTimetable()
	slot := model.Slot{Day: 0, Period: 0}
	tt.Even[slot] = []materialize.Entry{entry(1, model.Lecture, "IS-21", "L1", 10)}
	tt.Odd[slot] = []materialize.Entry{entry(1, model.Lecture, "IS-21", "L1", 10)}
	tt.Even[model.Slot{Day: 0, Period: 1}] = []materialize.Entry{entry(2, model.Practical, "IS-21", "L1", 10)}
	tt.Odd[model.Slot{Day: 0, Period: 1}] = []materialize.Entry{entry(2, model.Practical, "IS-21", "L1", 10)}

	assert.Equal(t, 1.0, EvaluateTimetable(tt))
}

func TestEvaluateTimetablePenalizesGaps(t *testing.T) {
	tt := materialize.NewTimetable()
	tt.Even[model.Slot{Day: 0, Period: 0}] = []materialize.Entry{entry(1, model.Lecture, "IS-21", "L1", 10)}
	tt.Even[model.Slot{Day: 0, Period: 2}] = []materialize.Entry{entry(2, model.Practical, "IS-21", "L1", 10)}
	// one idle period between period 0 and period 2 for both the group and the instructor.

	score := EvaluateTimetable(tt)
	assert.Less(t, score, 1.0)
}

func TestEvaluateTimetablePenalizesInstructorOverload(t *testing.T) {
	tt := materialize.NewTimetable()
	tt.Even[model.Slot{Day: 0, Period: 0}] = []materialize.Entry{entry(1, model.Lecture, "IS-21", "L1", 0)}

	score := EvaluateTimetable(tt)
	assert.Less(t, score, 1.0)
}

func TestEvaluateTimetablePenalizesMissingLectures(t *testing.T) {
	tt := materialize.NewTimetable()
	// SubjectNumLectures is 1 but nothing is scheduled at all.
	assert.Equal(t, 1.0, EvaluateTimetable(tt), "an empty timetable has no subjects to deviate from")
}

func TestCountGaps(t *testing.T) {
	byslot := map[model.Slot][]materialize.Entry{
		{Day: 0, Period: 0}: {entry(1, model.Lecture, "IS-21", "L1", 10)},
		{Day: 0, Period: 2}: {entry(2, model.Practical, "IS-21", "L1", 10)},
	}
	assert.Equal(t, 2, CountGaps(byslot)) // one gap counted for the group, one for the instructor
}

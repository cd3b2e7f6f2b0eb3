package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univsched/unitimetable/internal/config"
	"github.com/univsched/unitimetable/internal/model"
	"github.com/univsched/unitimetable/internal/problem"
)

func testProblem(t *testing.T, weekType model.WeekType) *problem.Problem {
	t.Helper()
	rooms := []model.Room{{ID: "101", Capacity: 30}}
	groups := []model.Group{{Number: "IS-21", Size: 25}}
	instructors := []model.Instructor{
		{ID: "L1", Name: "Ivanenko", SubjectsCanTeach: map[string]bool{"MATH101": true}, TypesCanTeach: map[model.LessonKind]bool{model.Lecture: true}, MaxHoursPerWeek: 10},
	}
	subjects := []model.Subject{{ID: "MATH101", Name: "Math", GroupID: "IS-21", NumLectures: 1, WeekType: weekType}}
	p, errs := problem.New(rooms, groups, instructors, subjects, &config.Config{})
	require.Empty(t, errs)
	return p
}

func TestBuildProjectsBothIntoBothWeeks(t *testing.T) {
	p := testProblem(t, model.Both)
	lessonID := p.Lessons[0].ID
	tuple := p.Domains[lessonID][0]
	assignment := map[int]model.Tuple{lessonID: tuple}

	tt := Build(p, assignment)
	assert.Len(t, tt.Even[tuple.Slot], 1)
	assert.Len(t, tt.Odd[tuple.Slot], 1)
}

func TestBuildProjectsEvenOnlyIntoEvenWeek(t *testing.T) {
	p := testProblem(t, model.Even)
	lessonID := p.Lessons[0].ID
	tuple := p.Domains[lessonID][0]
	assignment := map[int]model.Tuple{lessonID: tuple}

	tt := Build(p, assignment)
	assert.Len(t, tt.Even[tuple.Slot], 1)
	assert.Empty(t, tt.Odd[tuple.Slot])
}

func TestEntryForDenormalizesInstructorAndSubjectData(t *testing.T) {
	p := testProblem(t, model.Both)
	lessonID := p.Lessons[0].ID
	tuple := p.Domains[lessonID][0]

	entry, ok := EntryFor(p, lessonID, tuple)
	require.True(t, ok)
	assert.Equal(t, "Ivanenko", entry.InstructorName)
	assert.Equal(t, 10, entry.InstructorMaxHours)
	assert.Equal(t, 1, entry.SubjectNumLectures)
}

func TestEntryForUnknownLesson(t *testing.T) {
	p := testProblem(t, model.Both)
	_, ok := EntryFor(p, 9999, model.Tuple{})
	assert.False(t, ok)
}

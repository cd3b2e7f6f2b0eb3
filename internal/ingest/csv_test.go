package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univsched/unitimetable/internal/model"
	"github.com/univsched/unitimetable/internal/schederr"
)

func TestRooms(t *testing.T) {
	csv := "id;capacity\n101;30\n202;60\n"
	rooms, err := Rooms(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, model.Room{ID: "101", Capacity: 30}, rooms[0])
	assert.Equal(t, model.Room{ID: "202", Capacity: 60}, rooms[1])
}

func TestRoomsMalformedCapacity(t *testing.T) {
	_, err := Rooms(strings.NewReader("id;capacity\n101;thirty\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, schederr.ErrMalformedInput)
}

func TestGroupsWithSubgroups(t *testing.T) {
	csv := "number;size;subgroups\nIS-21;25;\"A;B\"\nIS-22;18;\n"
	groups, err := Groups(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"A", "B"}, groups[0].Subgroups)
	assert.Nil(t, groups[1].Subgroups)
}

func TestInstructors(t *testing.T) {
	csv := "id;name;subjects;types;maxHours\nL1;Ivanenko;MATH101,PHYS201;Лекція,Практика;20\n"
	instructors, err := Instructors(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, instructors, 1)
	ins := instructors[0]
	assert.True(t, ins.SubjectsCanTeach["MATH101"])
	assert.True(t, ins.SubjectsCanTeach["PHYS201"])
	assert.True(t, ins.TypesCanTeach[model.Lecture])
	assert.True(t, ins.TypesCanTeach[model.Practical])
	assert.Equal(t, 20, ins.MaxHoursPerWeek)
}

func TestSubjectsWeekTypeAndRequiresSubgroups(t *testing.T) {
	csv := "id;name;group;lectures;practicals;requiresSubgroups;weekType\nMATH101;Math;IS-21;2;2;Yes;Even\n"
	subjects, err := Subjects(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.True(t, subjects[0].RequiresSubgroups)
	assert.Equal(t, model.Even, subjects[0].WeekType)
}

func TestFilterUnknownGroupsDropsAndWarns(t *testing.T) {
	subjects := []model.Subject{
		{ID: "MATH101", GroupID: "IS-21"},
		{ID: "PHYS201", GroupID: "MISSING"},
	}
	groups := []model.Group{{Number: "IS-21", Size: 25}}

	log := zap.NewNop()
	kept := FilterUnknownGroups(subjects, groups, log)
	require.Len(t, kept, 1)
	assert.Equal(t, "MATH101", kept[0].ID)
}

func TestEffectiveSize(t *testing.T) {
	g := model.Group{Size: 25, Subgroups: []string{"A", "B"}}
	assert.Equal(t, 13, EffectiveSize(g, true))
	assert.Equal(t, 25, EffectiveSize(g, false))
}

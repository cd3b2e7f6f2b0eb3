package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupSubgroupSize(t *testing.T) {
	g := Group{Number: "IS-21", Size: 25, Subgroups: []string{"A", "B"}}
	assert.Equal(t, 13, g.SubgroupSize())

	solo := Group{Number: "IS-22", Size: 20}
	assert.Equal(t, 20, solo.SubgroupSize())
}

func TestInstructorQualifies(t *testing.T) {
	ins := Instructor{
		SubjectsCanTeach: map[string]bool{"MATH101": true},
		TypesCanTeach:    map[LessonKind]bool{Lecture: true},
	}
	assert.True(t, ins.Qualifies("MATH101", Lecture))
	assert.False(t, ins.Qualifies("MATH101", Practical))
	assert.False(t, ins.Qualifies("PHYS101", Lecture))
}

func TestParseWeekType(t *testing.T) {
	assert.Equal(t, Even, ParseWeekType("even"))
	assert.Equal(t, Odd, ParseWeekType("odd"))
	assert.Equal(t, Both, ParseWeekType("both"))
	assert.Equal(t, Both, ParseWeekType("anything else"))
}

func TestAllSlotsCoversDaysAndPeriods(t *testing.T) {
	slots := AllSlots()
	require.Len(t, slots, len(DayNames)*PeriodsPerDay)

	seen := make(map[Slot]bool)
	for _, s := range slots {
		seen[s] = true
	}
	assert.True(t, seen[Slot{Day: 0, Period: 1}])
	assert.True(t, seen[Slot{Day: len(DayNames) - 1, Period: PeriodsPerDay}])
}

func TestLessonHasSubgroup(t *testing.T) {
	assert.True(t, Lesson{Subgroup: "A"}.HasSubgroup())
	assert.False(t, Lesson{}.HasSubgroup())
}

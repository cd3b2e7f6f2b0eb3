package ga

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univsched/unitimetable/internal/config"
	"github.com/univsched/unitimetable/internal/metrics"
	"github.com/univsched/unitimetable/internal/model"
	"github.com/univsched/unitimetable/internal/problem"
)

func smallProblem(t *testing.T) *problem.Problem {
	t.Helper()
	rooms := []model.Room{{ID: "101", Capacity: 30}}
	groups := []model.Group{{Number: "IS-21", Size: 25}}
	instructors := []model.Instructor{
		{ID: "L1", SubjectsCanTeach: map[string]bool{"MATH101": true}, TypesCanTeach: map[model.LessonKind]bool{model.Lecture: true, model.Practical: true}, MaxHoursPerWeek: 10},
	}
	subjects := []model.Subject{{ID: "MATH101", GroupID: "IS-21", NumLectures: 1, NumPracticals: 1, WeekType: model.Both}}

	cfg := &config.Config{
		DailyCap: 3,
		GA: config.GA{
			PopulationSize:    6,
			Generations:       5,
			EliteFraction:     0.2,
			SelectionFraction: 0.5,
			MutationRate:      0.5,
		},
	}
	p, errs := problem.New(rooms, groups, instructors, subjects, cfg)
	require.Empty(t, errs)
	return p
}

func TestOptimizerRunReturnsBestWithinUnitRange(t *testing.T) {
	p := smallProblem(t)
	opt := New(p, zap.NewNop(), metrics.New())

	best := opt.Run(context.Background())
	require.NotNil(t, best)
	assert.GreaterOrEqual(t, best.Fitness, 0.0)
	assert.LessOrEqual(t, best.Fitness, 1.0)
}

func TestOptimizerRunRespectsCancelledContext(t *testing.T) {
	p := smallProblem(t)
	opt := New(p, zap.NewNop(), metrics.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	best := opt.Run(ctx)
	require.NotNil(t, best)
}

func TestIndividualCloneIsIndependent(t *testing.T) {
	ind := newIndividual()
	slot := model.Slot{Day: 0, Period: 0}
	ind.Even[slot] = []Placement{{LessonID: 1}}

	clone := ind.clone()
	clone.Even[slot][0].LessonID = 99

	assert.Equal(t, 1, ind.Even[slot][0].LessonID, "mutating a clone must not affect the original")
}

func TestDedupeLessonsDropsDuplicateAcrossSlots(t *testing.T) {
	ind := newIndividual()
	slotA := model.Slot{Day: 0, Period: 0}
	slotB := model.Slot{Day: 0, Period: 1}
	ind.Even[slotA] = []Placement{{LessonID: 1}}
	ind.Even[slotB] = []Placement{{LessonID: 1}}

	dedupeLessons(ind)

	total := 0
	for _, placements := range ind.Even {
		total += len(placements)
	}
	assert.Equal(t, 1, total, "a lesson placed twice must be kept only once")
}

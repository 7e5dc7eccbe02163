package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xskcdf/Aquiis-sub005/internal/domain/entity"
	"github.com/xskcdf/Aquiis-sub005/internal/domain/workflow"
)

func TestScheduleTour(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)
	prospect := env.prospect(t, "jane")

	res := env.tours.ScheduleTour(env.ctx, prospect.ID, property.ID, fixedNow.Add(24*time.Hour))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, workflow.TourScheduled, res.Data.Status)
	assert.Equal(t, workflow.ProspectTourScheduled, env.reloadProspect(t, prospect.ID).Status)

	second := env.tours.ScheduleTour(env.ctx, prospect.ID, property.ID, fixedNow.Add(72*time.Hour))
	require.True(t, second.Success, second.Message)
	assert.Len(t, env.history(t, entity.TypeProspectiveTenant, prospect.ID), 1, "only the first tour moves the lead")

	list := env.tours.ListTours(env.ctx, prospect.ID)
	require.True(t, list.Success)
	assert.Len(t, list.Data, 2)
}

func TestTourTransitions(t *testing.T) {
	tests := []struct {
		name   string
		run    func(env *testEnv, id string) workflow.Result
		status workflow.TourStatus
	}{
		{
			name:   "complete",
			run:    func(env *testEnv, id string) workflow.Result { return env.tours.CompleteTour(env.ctx, id, "Liked the kitchen") },
			status: workflow.TourCompleted,
		},
		{
			name:   "cancel",
			run:    func(env *testEnv, id string) workflow.Result { return env.tours.CancelTour(env.ctx, id, "Rescheduling") },
			status: workflow.TourCancelled,
		},
		{
			name:   "no show",
			run:    func(env *testEnv, id string) workflow.Result { return env.tours.MarkTourNoShow(env.ctx, id) },
			status: workflow.TourNoShow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tour := env.tours.ScheduleTour(env.ctx, env.prospect(t, "jane").ID, env.property(t).ID, fixedNow)
			require.True(t, tour.Success, tour.Message)

			res := tt.run(env, tour.Data.ID)
			require.True(t, res.Success, res.Message)

			stored, err := env.repos().Tours().GetByID(env.ctx, testOrg, tour.Data.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, stored.Status)
			assert.Equal(t, 2, stored.Version)

			again := tt.run(env, tour.Data.ID)
			assert.False(t, again.Success)
			assert.Contains(t, again.Message, "is a terminal status")
		})
	}
}

func TestCompleteTour_RecordsFeedback(t *testing.T) {
	env := newTestEnv(t)
	tour := env.tours.ScheduleTour(env.ctx, env.prospect(t, "jane").ID, env.property(t).ID, fixedNow)
	require.True(t, tour.Success)

	require.True(t, env.tours.CompleteTour(env.ctx, tour.Data.ID, "Wants a second visit").Success)

	stored, err := env.repos().Tours().GetByID(env.ctx, testOrg, tour.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wants a second visit", stored.Feedback)
	assert.Equal(t, []string{"Schedule", "Complete"}, actions(env.history(t, entity.TypeTour, tour.Data.ID)))
}

func TestScheduleTour_Rejections(t *testing.T) {
	env := newTestEnv(t)
	property := env.property(t)

	missing := env.tours.ScheduleTour(env.ctx, "missing", property.ID, fixedNow)
	assert.False(t, missing.Success)
	assert.Equal(t, "Prospective tenant not found", missing.Message)

	noTime := env.tours.ScheduleTour(env.ctx, env.prospect(t, "jane").ID, property.ID, time.Time{})
	assert.False(t, noTime.Success)
	assert.Equal(t, "A tour time is required", noTime.Message)
}

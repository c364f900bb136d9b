package storage

import (
	"time"

	"household-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *DBTestSuite) addPlan(p models.NewPlan) *models.Plan {
	suite.clock.advance(time.Second)
	if p.Date.IsZero() {
		p.Date = suite.db.Today()
	}
	plan, err := suite.db.CreatePlan(suite.ctx, p)
	require.NoError(suite.T(), err)
	return plan
}

func (suite *DBTestSuite) TestCreatePlanDefaults() {
	plan := suite.addPlan(models.NewPlan{UserID: alice, Title: "Врач", Time: strPtr("9:15")})

	assert.Equal(suite.T(), models.DefaultPlanCategory, plan.Category)
	assert.False(suite.T(), plan.Shared)
	assert.True(suite.T(), plan.NotificationEnabled)
	require.NotNil(suite.T(), plan.Time)
	assert.Equal(suite.T(), "09:15", *plan.Time)
	require.NotNil(suite.T(), plan.NotificationTime)
	assert.Equal(suite.T(), "08:45", *plan.NotificationTime)
	assert.Equal(suite.T(), "Alice", plan.OwnerName)

	untimed := suite.addPlan(models.NewPlan{UserID: alice, Title: "Позвонить маме"})
	assert.Nil(suite.T(), untimed.Time)
	assert.Nil(suite.T(), untimed.NotificationTime)

	early := suite.addPlan(models.NewPlan{UserID: alice, Title: "Поезд", Time: strPtr("00:10")})
	require.NotNil(suite.T(), early.NotificationTime)
	assert.Equal(suite.T(), "00:00", *early.NotificationTime)
}

func (suite *DBTestSuite) TestCreatePlanValidation() {
	_, err := suite.db.CreatePlan(suite.ctx, models.NewPlan{UserID: alice, Date: suite.db.Today()})
	assert.ErrorAs(suite.T(), err, &models.ValidationError{})

	_, err = suite.db.CreatePlan(suite.ctx, models.NewPlan{UserID: alice, Title: "x"})
	assert.ErrorAs(suite.T(), err, &models.ValidationError{})

	_, err = suite.db.CreatePlan(suite.ctx, models.NewPlan{UserID: alice, Title: "x", Date: suite.db.Today(), Time: strPtr("25:00")})
	assert.ErrorAs(suite.T(), err, &models.ValidationError{})
}

func (suite *DBTestSuite) TestToggleSharedChangesVisibility() {
	today := suite.db.Today()
	plan := suite.addPlan(models.NewPlan{UserID: alice, Title: "Кино", Date: today})

	visible, err := suite.db.PlansForDate(suite.ctx, bob, today)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), visible)
	_, err = suite.db.GetPlan(suite.ctx, plan.ID, bob)
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	toggled, err := suite.db.TogglePlanShared(suite.ctx, plan.ID, alice)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), toggled.Shared)

	visible, err = suite.db.PlansForDate(suite.ctx, bob, today)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), visible, 1)
	assert.Equal(suite.T(), plan.ID, visible[0].ID)

	_, err = suite.db.TogglePlanShared(suite.ctx, plan.ID, bob)
	assert.ErrorIs(suite.T(), err, ErrNotFound, "only the owner toggles")

	toggled, err = suite.db.TogglePlanShared(suite.ctx, plan.ID, alice)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), toggled.Shared)

	visible, err = suite.db.PlansForDate(suite.ctx, bob, today)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), visible)
}

func (suite *DBTestSuite) TestPlansForDateOrdersUntimedFirst() {
	today := suite.db.Today()
	suite.addPlan(models.NewPlan{UserID: alice, Title: "вечер", Time: strPtr("19:00")})
	suite.addPlan(models.NewPlan{UserID: bob, Title: "общий", Time: strPtr("08:00"), Shared: true})
	suite.addPlan(models.NewPlan{UserID: alice, Title: "без времени"})
	suite.addPlan(models.NewPlan{UserID: bob, Title: "чужой", Time: strPtr("07:00")})
	suite.addPlan(models.NewPlan{UserID: alice, Title: "завтра", Date: today.AddDate(0, 0, 1)})

	plans, err := suite.db.PlansForDate(suite.ctx, alice, today)
	require.NoError(suite.T(), err)
	var titles []string
	for _, p := range plans {
		titles = append(titles, p.Title)
	}
	assert.Equal(suite.T(), []string{"без времени", "общий", "вечер"}, titles)
}

func (suite *DBTestSuite) TestUpdatePlanFields() {
	plan := suite.addPlan(models.NewPlan{UserID: alice, Title: "Встреча", Time: strPtr("10:00"), Description: strPtr("офис")})

	newTime := "14:30"
	updated, err := suite.db.UpdatePlan(suite.ctx, plan.ID, alice, models.PlanUpdate{Time: &newTime})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "14:30", *updated.Time)
	assert.Equal(suite.T(), "14:00", *updated.NotificationTime)
	assert.Equal(suite.T(), "Встреча", updated.Title)
	assert.Equal(suite.T(), "офис", *updated.Description)

	newDate := date("2026-11-01")
	updated, err = suite.db.UpdatePlan(suite.ctx, plan.ID, alice, models.PlanUpdate{Date: &newDate, Category: strPtr("работа")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2026-11-01", updated.Date.Format(models.DateLayout))
	assert.Equal(suite.T(), "работа", updated.Category)
	assert.Equal(suite.T(), "14:30", *updated.Time)

	updated, err = suite.db.UpdatePlan(suite.ctx, plan.ID, alice, models.PlanUpdate{Time: strPtr("")})
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), updated.Time)
	assert.Nil(suite.T(), updated.NotificationTime)

	_, err = suite.db.UpdatePlan(suite.ctx, plan.ID, bob, models.PlanUpdate{Title: strPtr("hijack")})
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *DBTestSuite) TestDeletePlanHidesIt() {
	plan := suite.addPlan(models.NewPlan{UserID: alice, Title: "Отпуск", Shared: true})
	require.NoError(suite.T(), suite.db.DeletePlan(suite.ctx, plan.ID, alice))

	_, err := suite.db.GetPlan(suite.ctx, plan.ID, alice)
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	shared, err := suite.db.SharedPlans(suite.ctx, suite.db.Today())
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), shared)

	recent, err := suite.db.RecentPlans(suite.ctx, bob, 10)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), recent)
}

func (suite *DBTestSuite) TestSharedPlansFromToday() {
	today := suite.db.Today()
	suite.addPlan(models.NewPlan{UserID: alice, Title: "прошлое", Date: today.AddDate(0, 0, -1), Shared: true})
	suite.addPlan(models.NewPlan{UserID: bob, Title: "послезавтра", Date: today.AddDate(0, 0, 2), Shared: true})
	suite.addPlan(models.NewPlan{UserID: alice, Title: "сегодня", Time: strPtr("18:00"), Shared: true})
	suite.addPlan(models.NewPlan{UserID: alice, Title: "личное"})

	plans, err := suite.db.SharedPlans(suite.ctx, today)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), plans, 2)
	assert.Equal(suite.T(), "сегодня", plans[0].Title)
	assert.Equal(suite.T(), "Alice", plans[0].OwnerName)
	assert.Equal(suite.T(), "послезавтра", plans[1].Title)
	assert.Equal(suite.T(), "Bob", plans[1].OwnerName)
}

func (suite *DBTestSuite) TestSearchPlans() {
	today := suite.db.Today()
	suite.addPlan(models.NewPlan{UserID: alice, Title: "Dentist", Description: strPtr("bring card"), Date: today.AddDate(0, 0, 3), Category: "здоровье"})
	suite.addPlan(models.NewPlan{UserID: alice, Title: "Работа", Date: today, Time: strPtr("09:00"), Category: "работа"})
	suite.addPlan(models.NewPlan{UserID: bob, Title: "Ужин", Description: strPtr("card table"), Date: today, Shared: true})
	suite.addPlan(models.NewPlan{UserID: bob, Title: "Секрет", Description: strPtr("card"), Date: today})

	from, to := today, today.AddDate(0, 0, 1)
	tests := []struct {
		name   string
		filter PlanFilter
		want   []string
	}{
		{"text in title or description", PlanFilter{Text: "CARD"}, []string{"Ужин", "Dentist"}},
		{"category", PlanFilter{Category: "работа"}, []string{"Работа"}},
		{"date range", PlanFilter{From: &from, To: &to}, []string{"Ужин", "Работа"}},
		{"open-ended from", PlanFilter{From: ptrTime(today.AddDate(0, 0, 2))}, []string{"Dentist"}},
		{"shared only", PlanFilter{SharedOnly: true}, []string{"Ужин"}},
		{"owner", PlanFilter{OwnerID: bob}, []string{"Ужин"}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			tt.filter.ViewerID = alice
			plans, err := suite.db.SearchPlans(suite.ctx, tt.filter)
			require.NoError(suite.T(), err)
			var titles []string
			for _, p := range plans {
				titles = append(titles, p.Title)
			}
			assert.Equal(suite.T(), tt.want, titles)
		})
	}
}

func (suite *DBTestSuite) TestTodayReminders() {
	today := suite.db.Today()
	suite.addPlan(models.NewPlan{UserID: bob, Title: "Спорт", Time: strPtr("18:00")})
	suite.addPlan(models.NewPlan{UserID: alice, Title: "Врач", Time: strPtr("09:00")})
	suite.addPlan(models.NewPlan{UserID: alice, Title: "Без времени"})
	suite.addPlan(models.NewPlan{UserID: alice, Title: "Завтра", Time: strPtr("09:00"), Date: today.AddDate(0, 0, 1)})
	gone := suite.addPlan(models.NewPlan{UserID: alice, Title: "Удалено", Time: strPtr("10:00")})
	require.NoError(suite.T(), suite.db.DeletePlan(suite.ctx, gone.ID, alice))

	reminders, err := suite.db.TodayReminders(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), reminders, 2)
	assert.Equal(suite.T(), "Врач", reminders[0].Plan.Title)
	assert.Equal(suite.T(), "alice", reminders[0].Username)
	assert.Equal(suite.T(), "Спорт", reminders[1].Plan.Title)
	assert.Equal(suite.T(), "bob", reminders[1].Username)
}

package storage

import (
	"time"

	"household-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *DBTestSuite) addPurchase(userID int64, name, cost string, priority models.Priority, target *time.Time) *models.Purchase {
	suite.clock.advance(time.Second)
	p, err := suite.db.CreatePurchase(suite.ctx, models.NewPurchase{
		UserID:     userID,
		ItemName:   name,
		Cost:       amount(cost),
		Priority:   priority,
		TargetDate: target,
	})
	require.NoError(suite.T(), err)
	return p
}

func purchaseNames(ps []models.Purchase) []string {
	var names []string
	for _, p := range ps {
		names = append(names, p.ItemName)
	}
	return names
}

func (suite *DBTestSuite) TestCreatePurchaseRoundTrip() {
	target := date("2026-12-01")
	p, err := suite.db.CreatePurchase(suite.ctx, models.NewPurchase{
		UserID:     alice,
		ItemName:   "Велосипед",
		Cost:       amount("45000.99"),
		Priority:   models.PriorityHigh,
		TargetDate: &target,
		Notes:      strPtr("красный"),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusPlanned, p.Status)
	assert.True(suite.T(), amount("45000.99").Equal(p.Cost))
	require.NotNil(suite.T(), p.TargetDate)
	assert.Equal(suite.T(), "2026-12-01", p.TargetDate.Format(models.DateLayout))
	assert.Equal(suite.T(), "красный", *p.Notes)

	_, err = suite.db.CreatePurchase(suite.ctx, models.NewPurchase{UserID: alice, ItemName: "x", Cost: amount("0"), Priority: models.PriorityLow})
	assert.ErrorAs(suite.T(), err, &models.ValidationError{})
	_, err = suite.db.CreatePurchase(suite.ctx, models.NewPurchase{UserID: alice, ItemName: "x", Cost: amount("1"), Priority: "urgent"})
	assert.ErrorAs(suite.T(), err, &models.ValidationError{})
}

func (suite *DBTestSuite) TestPurchasesOrderByPriorityThenTargetDate() {
	suite.addPurchase(alice, "low", "10", models.PriorityLow, ptrTime(date("2026-10-20")))
	suite.addPurchase(alice, "high-undated", "10", models.PriorityHigh, nil)
	suite.addPurchase(alice, "medium", "10", models.PriorityMedium, ptrTime(date("2027-01-01")))
	suite.addPurchase(alice, "high-dated", "10", models.PriorityHigh, ptrTime(date("2026-11-01")))

	got, err := suite.db.ListPurchases(suite.ctx, alice, models.StatusPlanned)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"high-dated", "high-undated", "medium", "low"}, purchaseNames(got))
}

func (suite *DBTestSuite) TestSearchPurchasesCostRangeInclusive() {
	suite.addPurchase(alice, "99.99", "99.99", models.PriorityHigh, nil)
	suite.addPurchase(alice, "100", "100", models.PriorityLow, nil)
	suite.addPurchase(alice, "300", "300", models.PriorityHigh, nil)
	suite.addPurchase(alice, "500", "500", models.PriorityMedium, nil)
	suite.addPurchase(alice, "500.01", "500.01", models.PriorityHigh, nil)
	suite.addPurchase(bob, "bob-200", "200", models.PriorityHigh, nil)

	minCost, maxCost := amount("100"), amount("500")
	got, err := suite.db.SearchPurchases(suite.ctx, PurchaseFilter{UserID: alice, MinCost: &minCost, MaxCost: &maxCost})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"300", "500", "100"}, purchaseNames(got))
}

func (suite *DBTestSuite) TestSearchPurchasesByTextPriorityStatus() {
	phone := suite.addPurchase(alice, "Телефон", "30000", models.PriorityHigh, nil)
	suite.addPurchase(alice, "Lamp", "2000", models.PriorityLow, nil)
	_, err := suite.db.UpdatePurchase(suite.ctx, phone.ID, alice, models.PurchaseUpdate{Notes: strPtr("new lamp too")})
	require.NoError(suite.T(), err)
	_, err = suite.db.MarkPurchaseBought(suite.ctx, phone.ID, alice)
	require.NoError(suite.T(), err)

	got, err := suite.db.SearchPurchases(suite.ctx, PurchaseFilter{UserID: alice, Text: "lamp"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"Телефон", "Lamp"}, purchaseNames(got))

	got, err = suite.db.SearchPurchases(suite.ctx, PurchaseFilter{UserID: alice, Priority: models.PriorityLow})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"Lamp"}, purchaseNames(got))

	got, err = suite.db.SearchPurchases(suite.ctx, PurchaseFilter{UserID: alice, Status: models.StatusBought})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"Телефон"}, purchaseNames(got))

	planned, err := suite.db.ListPurchases(suite.ctx, alice, models.StatusPlanned)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"Lamp"}, purchaseNames(planned))
}

func (suite *DBTestSuite) TestUpdatePurchaseFields() {
	p := suite.addPurchase(alice, "Кресло", "7000", models.PriorityMedium, ptrTime(date("2026-11-11")))

	high := models.PriorityHigh
	updated, err := suite.db.UpdatePurchase(suite.ctx, p.ID, alice, models.PurchaseUpdate{Priority: &high})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.PriorityHigh, updated.Priority)
	assert.Equal(suite.T(), "Кресло", updated.ItemName)
	assert.True(suite.T(), amount("7000").Equal(updated.Cost))

	updated, err = suite.db.UpdatePurchase(suite.ctx, p.ID, alice, models.PurchaseUpdate{TargetDate: &time.Time{}})
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), updated.TargetDate)

	cost := amount("6500.5")
	updated, err = suite.db.UpdatePurchase(suite.ctx, p.ID, alice, models.PurchaseUpdate{Cost: &cost, ItemName: strPtr("Кресло офисное")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "6500.50", updated.Cost.StringFixed(2))
	assert.Equal(suite.T(), "Кресло офисное", updated.ItemName)

	_, err = suite.db.MarkPurchaseBought(suite.ctx, p.ID, bob)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *DBTestSuite) TestDeletePurchase() {
	p := suite.addPurchase(alice, "Книга", "500", models.PriorityLow, nil)
	require.NoError(suite.T(), suite.db.DeletePurchase(suite.ctx, p.ID, alice))

	_, err := suite.db.GetPurchase(suite.ctx, p.ID, alice)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
	recent, err := suite.db.RecentPurchases(suite.ctx, alice, 5)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), recent)
}

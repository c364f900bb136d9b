package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"household-ledger/internal/handlers"
)

// E2ETestSuite drives the running server through its JSON turn endpoint.
type E2ETestSuite struct {
	suite.Suite
	client *http.Client
}

func (suite *E2ETestSuite) SetupSuite() {
	suite.client = &http.Client{}
}

// SetupTest clears any flow left open by a previous test.
func (suite *E2ETestSuite) SetupTest() {
	suite.turn(anna, "cancel", "", "")
	suite.turn(boris, "cancel", "", "")
}

func (suite *E2ETestSuite) turn(userID int64, intent, arg, text string) handlers.Reply {
	body, err := json.Marshal(handlers.Update{UserID: userID, Intent: intent, Arg: arg, Text: text})
	require.NoError(suite.T(), err)

	resp, err := suite.client.Post(appURL+"/api/turn", "application/json", bytes.NewReader(body))
	require.NoError(suite.T(), err)
	defer resp.Body.Close()
	require.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	var reply handlers.Reply
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&reply))
	return reply
}

func (suite *E2ETestSuite) say(userID int64, texts ...string) handlers.Reply {
	var r handlers.Reply
	for _, t := range texts {
		r = suite.turn(userID, "text", "", t)
	}
	return r
}

func text(r handlers.Reply) string {
	return strings.Join(r.Messages, "\n")
}

func (suite *E2ETestSuite) TestStrangerIsRejected() {
	r := suite.turn(4242, "start", "", "")
	assert.Contains(suite.T(), text(r), "Доступ запрещен")
}

func (suite *E2ETestSuite) TestAddExpenseAndSeeItInStats() {
	r := suite.turn(anna, "add_expense", "", "")
	assert.Equal(suite.T(), "add_expense:amount", r.State)

	r = suite.say(anna, "345,60", "продукты", "рынок")
	assert.Empty(suite.T(), r.State)
	assert.Contains(suite.T(), text(r), "✅ Расход добавлен!")

	r = suite.turn(boris, "stats_partner", "expenses", "")
	assert.Contains(suite.T(), text(r), "345.60 руб.")
	assert.Contains(suite.T(), text(r), "рынок")

	r = suite.turn(boris, "shared_today", "", "")
	assert.Contains(suite.T(), text(r), "Общие расходы сегодня")
}

func (suite *E2ETestSuite) TestCancelLeavesNothingBehind() {
	before := suite.turn(anna, "purchases", "", "")

	suite.turn(anna, "add_purchase", "", "")
	r := suite.say(anna, "Пылесос", "12000", "cancel")
	assert.Empty(suite.T(), r.State)
	assert.Contains(suite.T(), text(r), "Операция отменена")

	after := suite.turn(anna, "purchases", "", "")
	assert.Equal(suite.T(), before.Messages, after.Messages)
}

func (suite *E2ETestSuite) TestSharedPlanLifecycle() {
	suite.turn(anna, "add_plan", "", "")
	r := suite.say(anna, "Театр", "-", "завтра", "19:00", "встреча", "нет")
	require.Contains(suite.T(), text(r), "✅ План добавлен!")

	r = suite.turn(anna, "manage", "plan", "")
	require.NotEmpty(suite.T(), r.Options)
	var id int64
	for _, opt := range r.Options {
		if strings.Contains(opt.Label, "Театр") {
			_, raw, _ := strings.Cut(opt.Arg, ":")
			parsed, err := strconv.ParseInt(raw, 10, 64)
			require.NoError(suite.T(), err)
			id = parsed
		}
	}
	require.NotZero(suite.T(), id)

	r = suite.turn(boris, "plans_shared", "", "")
	assert.NotContains(suite.T(), text(r), "Театр")

	suite.turn(anna, "toggle_shared", strconv.FormatInt(id, 10), "")
	r = suite.turn(boris, "plans_shared", "", "")
	assert.Contains(suite.T(), text(r), "Театр")

	r = suite.turn(boris, "delete", "plan:"+strconv.FormatInt(id, 10), "")
	assert.Contains(suite.T(), text(r), "Запись не найдена")
}

func (suite *E2ETestSuite) TestNotificationsEndpoint() {
	resp, err := suite.client.Get(appURL + "/api/notifications/" + strconv.Itoa(anna))
	require.NoError(suite.T(), err)
	defer resp.Body.Close()
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	resp2, err := suite.client.Get(appURL + "/api/notifications/4242")
	require.NoError(suite.T(), err)
	defer resp2.Body.Close()
	assert.Equal(suite.T(), http.StatusForbidden, resp2.StatusCode)
}

// TestE2ESuite runs the test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}

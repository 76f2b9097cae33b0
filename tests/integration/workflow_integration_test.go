package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// WorkflowIntegrationTestSuite drives orders, claims and tasks through the full route table
type WorkflowIntegrationTestSuite struct {
	suite.Suite
	auth       *testutil.TokenAuth
	router     *gin.Engine
	db         *gorm.DB
	prevConfig *config.Config

	client  models.User
	other   models.User
	erin    models.User
	frank   models.User
	manager models.User
}

func (suite *WorkflowIntegrationTestSuite) SetupSuite() {
	suite.prevConfig = config.GetConfig()
	testutil.LoadTestConfig(suite.T())
	suite.auth = testutil.NewTokenAuth()
}

func (suite *WorkflowIntegrationTestSuite) TearDownSuite() {
	config.SetConfig(suite.prevConfig)
}

// SetupTest seeds one user per role and issues a token named after each
func (suite *WorkflowIntegrationTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.router = testutil.NewAPIRouter(suite.auth.Middleware())

	seed := func(name string, role models.Role) models.User {
		user := testutil.SeedUser(suite.T(), suite.db, name, role)
		suite.auth.Issue(name, testutil.Identity{Subject: user.Auth0ID, Role: role})
		return user
	}
	suite.client = seed("client", models.RoleClient)
	suite.other = seed("other", models.RoleClient)
	suite.erin = seed("erin", models.RoleEmployee)
	suite.frank = seed("frank", models.RoleEmployee)
	suite.manager = seed("manager", models.RoleManager)
}

func (suite *WorkflowIntegrationTestSuite) request(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]interface{}) {
	return testutil.Serve(suite.T(), suite.router, testutil.JSONRequest(suite.T(), method, path, token, body))
}

// mustRequest fails the test unless the request answers with status
func (suite *WorkflowIntegrationTestSuite) mustRequest(status int, method, path, token string, body any) map[string]interface{} {
	w, response := suite.request(method, path, token, body)
	suite.Require().Equal(status, w.Code, "%s %s: %s", method, path, w.Body.String())
	return testutil.Data(response)
}

func (suite *WorkflowIntegrationTestSuite) createOrder(title string) uint {
	data := suite.mustRequest(http.StatusCreated, http.MethodPost, "/api/v1/orders", "client", map[string]interface{}{
		"title":      title,
		"order_type": "New Design",
		"specifications": map[string]interface{}{
			"material":   "Coated paper",
			"dimensions": map[string]interface{}{"width": 297, "height": 420},
			"quantity":   500,
			"colors":     4,
		},
		"deadline": time.Now().Add(21 * 24 * time.Hour).UTC().Format(time.RFC3339),
	})
	return uint(data["id"].(float64))
}

func stageOf(order map[string]interface{}, name string) map[string]interface{} {
	return order["stages"].(map[string]interface{})[name].(map[string]interface{})
}

func historyActions(entity map[string]interface{}) []string {
	var actions []string
	for _, entry := range entity["history"].([]interface{}) {
		actions = append(actions, entry.(map[string]interface{})["action"].(string))
	}
	return actions
}

func (suite *WorkflowIntegrationTestSuite) TestOrderTravelsThroughEveryStage() {
	orderID := suite.createOrder("A2 posters")
	base := fmt.Sprintf("/api/v1/orders/%d", orderID)

	order := suite.mustRequest(http.StatusOK, http.MethodGet, base, "client", nil)
	suite.Equal("Submitted", order["status"])
	suite.Equal("mm", order["specifications"].(map[string]interface{})["dimensions"].(map[string]interface{})["unit"])
	suite.Equal("None", order["specifications"].(map[string]interface{})["finish_type"])
	for _, name := range []string{"review", "prepress", "production", "delivery"} {
		suite.Equal("Pending", stageOf(order, name)["status"], name)
	}

	order = suite.mustRequest(http.StatusOK, http.MethodPut, base+"/assign", "manager",
		map[string]interface{}{"stage": "review", "employee_id": suite.erin.ID})
	suite.Equal("In Review", order["status"])
	suite.Equal("In Progress", stageOf(order, "review")["status"])
	suite.NotNil(stageOf(order, "review")["start_date"])

	suite.mustRequest(http.StatusOK, http.MethodPut, base+"/status", "erin", map[string]interface{}{"status": "Approved"})
	suite.mustRequest(http.StatusOK, http.MethodPut, base+"/assign", "manager",
		map[string]interface{}{"stage": "prepress", "employee_id": suite.frank.ID})

	for _, status := range []string{"In Prepress", "Ready for Production", "In Production", "Completed"} {
		order = suite.mustRequest(http.StatusOK, http.MethodPut, base+"/status", "frank", map[string]interface{}{"status": status})
		suite.Equal(status, order["status"])
	}

	order = suite.mustRequest(http.StatusOK, http.MethodPut, base, "frank",
		map[string]interface{}{"tracking_number": "1Z999", "delivery_method": "Courier"})
	suite.Equal("1Z999", stageOf(order, "delivery")["tracking_number"])

	order = suite.mustRequest(http.StatusOK, http.MethodPut, base+"/status", "frank",
		map[string]interface{}{"status": "Delivered", "notes": "Signed for at reception"})
	suite.Equal("Delivered", order["status"])
	for _, name := range []string{"review", "prepress", "production", "delivery"} {
		suite.Equal("Completed", stageOf(order, name)["status"], name)
		suite.NotNil(stageOf(order, name)["completion_date"], name)
	}

	order = suite.mustRequest(http.StatusOK, http.MethodGet, base, "client", nil)
	suite.Equal([]string{
		"Order Created",
		"Assignment Updated",
		"Status Updated",
		"Assignment Updated",
		"Status Updated",
		"Status Updated",
		"Status Updated",
		"Status Updated",
		"Order Updated",
		"Status Updated",
	}, historyActions(order))

	var stored int64
	suite.Require().NoError(suite.db.Model(&models.HistoryEntry{}).
		Where("entity_type = ? AND entity_id = ?", "orders", orderID).Count(&stored).Error)
	suite.Equal(int64(10), stored)
}

func (suite *WorkflowIntegrationTestSuite) TestOrderVisibilityFollowsRoles() {
	first := suite.createOrder("Business cards")
	suite.createOrder("Flyers")

	w, response := suite.request(http.MethodGet, "/api/v1/orders", "client", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(testutil.List(response), 2)

	w, response = suite.request(http.MethodGet, "/api/v1/orders", "other", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Empty(testutil.List(response))

	w, response = suite.request(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", first), "other", nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("NOT_AUTHORIZED", testutil.ErrorCode(response))

	w, response = suite.request(http.MethodGet, "/api/v1/orders", "erin", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Empty(testutil.List(response), "unassigned employee sees nothing")

	suite.mustRequest(http.StatusOK, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/assign", first), "manager",
		map[string]interface{}{"stage": "production", "employee_id": suite.erin.ID})

	w, response = suite.request(http.MethodGet, "/api/v1/orders", "erin", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	orders := testutil.List(response)
	suite.Require().Len(orders, 1)
	suite.Equal("Business cards", orders[0].(map[string]interface{})["title"])

	w, response = suite.request(http.MethodGet, "/api/v1/orders?limit=1", "manager", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(testutil.List(response), 1)
	pagination := response["pagination"].(map[string]interface{})
	suite.Equal(float64(2), pagination["total"])
	suite.Equal(float64(2), pagination["pages"])
}

func (suite *WorkflowIntegrationTestSuite) TestClientEditsStopOnceWorkStarts() {
	orderID := suite.createOrder("Menu cards")
	base := fmt.Sprintf("/api/v1/orders/%d", orderID)

	order := suite.mustRequest(http.StatusOK, http.MethodPut, base, "client", map[string]interface{}{"title": "Dinner menu cards"})
	suite.Equal("Dinner menu cards", order["title"])

	w, response := suite.request(http.MethodPut, base, "client", map[string]interface{}{"priority": "Urgent"})
	suite.Equal(http.StatusConflict, w.Code, "clients cannot set priority")
	suite.Equal("FORBIDDEN_TRANSITION", testutil.ErrorCode(response))

	suite.mustRequest(http.StatusOK, http.MethodPut, base+"/assign", "manager",
		map[string]interface{}{"stage": "review", "employee_id": suite.erin.ID})
	suite.mustRequest(http.StatusOK, http.MethodPut, base+"/status", "erin", map[string]interface{}{"status": "Approved"})

	w, response = suite.request(http.MethodPut, base, "client", map[string]interface{}{"title": "Too late"})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("FORBIDDEN_TRANSITION", testutil.ErrorCode(response))

	order = suite.mustRequest(http.StatusOK, http.MethodPut, base+"/status", "manager",
		map[string]interface{}{"status": "On Hold", "notes": "Awaiting payment"})
	suite.Equal("On Hold", order["status"])
	suite.Equal("Completed", stageOf(order, "review")["status"], "hold leaves the stages alone")
}

func (suite *WorkflowIntegrationTestSuite) TestClaimResolution() {
	orderID := suite.createOrder("Banner")

	w, response := suite.request(http.MethodPost, "/api/v1/claims", "other", map[string]interface{}{
		"order_id": orderID, "title": "Not my order", "description": "x", "claim_type": "Damaged",
	})
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("NOT_AUTHORIZED", testutil.ErrorCode(response))

	claim := suite.mustRequest(http.StatusCreated, http.MethodPost, "/api/v1/claims", "client", map[string]interface{}{
		"order_id": orderID, "title": "Torn edge", "description": "Banner arrived torn along the hem", "claim_type": "Damaged",
	})
	suite.Equal("Medium", claim["severity"])
	suite.Regexp(`^CLM-\d{4}-[0-9A-F]{8}$`, claim["claim_number"])
	base := fmt.Sprintf("/api/v1/claims/%d", uint(claim["id"].(float64)))

	claim = suite.mustRequest(http.StatusOK, http.MethodPut, base+"/assign", "manager",
		map[string]interface{}{"employee_id": suite.frank.ID})
	suite.Equal("Under Review", claim["status"])

	w, _ = suite.request(http.MethodGet, base, "erin", nil)
	suite.Equal(http.StatusForbidden, w.Code, "only the assignee sees the claim")

	suite.mustRequest(http.StatusOK, http.MethodPut, base+"/status", "frank", map[string]interface{}{"status": "In Progress"})

	w, response = suite.request(http.MethodPut, base, "client", map[string]interface{}{"severity": "High"})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("FORBIDDEN_TRANSITION", testutil.ErrorCode(response))

	claim = suite.mustRequest(http.StatusOK, http.MethodPut, base+"/status", "frank", map[string]interface{}{
		"status":     "Resolved",
		"resolution": map[string]interface{}{"action": "Reprint", "details": "New banner shipped"},
	})
	resolution := claim["resolution"].(map[string]interface{})
	suite.Equal("Reprint", resolution["action"])
	suite.Equal(float64(suite.frank.ID), resolution["resolved_by"])

	w, response = suite.request(http.MethodGet, fmt.Sprintf("/api/v1/claims?orderId=%d&status=Resolved", orderID), "client", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Len(testutil.List(response), 1)

	claim = suite.mustRequest(http.StatusOK, http.MethodGet, base, "client", nil)
	suite.Equal([]string{"Claim Created", "Assignment Updated", "Status Updated", "Status Updated"}, historyActions(claim))
}

func (suite *WorkflowIntegrationTestSuite) TestTaskHandOff() {
	orderID := suite.createOrder("Stickers")

	w, response := suite.request(http.MethodPost, "/api/v1/tasks", "erin", map[string]interface{}{
		"title": "Self assigned", "description": "x", "assigned_to": suite.erin.ID,
	})
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("NOT_AUTHORIZED", testutil.ErrorCode(response))

	w, _ = suite.request(http.MethodGet, "/api/v1/tasks", "client", nil)
	suite.Equal(http.StatusForbidden, w.Code, "clients have no task access")

	task := suite.mustRequest(http.StatusCreated, http.MethodPost, "/api/v1/tasks", "manager", map[string]interface{}{
		"title":         "Cut die lines",
		"description":   "Prepare die lines for the sticker sheet",
		"assigned_to":   suite.erin.ID,
		"related_order": orderID,
	})
	suite.Equal("General", task["task_type"])
	suite.Equal("Medium", task["priority"])
	suite.Equal("Pending", task["status"])
	base := fmt.Sprintf("/api/v1/tasks/%d", uint(task["id"].(float64)))

	task = suite.mustRequest(http.StatusOK, http.MethodPut, base, "erin", map[string]interface{}{"progress": 40})
	suite.Equal("In Progress", task["status"])

	task = suite.mustRequest(http.StatusOK, http.MethodPut, base+"/assign", "manager", map[string]interface{}{"employee_id": suite.frank.ID})
	suite.Equal(float64(suite.frank.ID), task["assigned_to"])

	w, _ = suite.request(http.MethodGet, base, "erin", nil)
	suite.Equal(http.StatusForbidden, w.Code)

	task = suite.mustRequest(http.StatusOK, http.MethodPut, base+"/complete", "frank", map[string]interface{}{"completion_notes": "Done"})
	suite.Equal("Completed", task["status"])
	suite.Equal(float64(100), task["progress"])
	suite.NotNil(task["completed_at"])

	w, response = suite.request(http.MethodPut, base, "manager", map[string]interface{}{"notes": "reopen"})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("FORBIDDEN_TRANSITION", testutil.ErrorCode(response))

	suite.mustRequest(http.StatusOK, http.MethodDelete, base, "manager", nil)
	w, _ = suite.request(http.MethodGet, base, "manager", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestWorkflowIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowIntegrationTestSuite))
}

package acceptance

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// OrderAcceptanceTestSuite follows a print job from submission to a settled claim
type OrderAcceptanceTestSuite struct {
	suite.Suite
	auth       *testutil.TokenAuth
	server     *httptest.Server
	client     *http.Client
	db         *gorm.DB
	prevConfig *config.Config
	users      map[string]models.User
}

func (suite *OrderAcceptanceTestSuite) SetupSuite() {
	suite.prevConfig = config.GetConfig()
	testutil.LoadTestConfig(suite.T())
	suite.auth = testutil.NewTokenAuth()
	suite.client = &http.Client{Timeout: 10 * time.Second}
}

func (suite *OrderAcceptanceTestSuite) TearDownSuite() {
	config.SetConfig(suite.prevConfig)
}

func (suite *OrderAcceptanceTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.server = httptest.NewServer(testutil.NewAPIRouter(suite.auth.Middleware()))

	suite.users = make(map[string]models.User)
	for name, role := range map[string]models.Role{
		"printshop-client": models.RoleClient,
		"prepress-tech":    models.RoleEmployee,
		"press-operator":   models.RoleEmployee,
		"floor-manager":    models.RoleManager,
		"owner":            models.RoleAdmin,
	} {
		user := testutil.SeedUser(suite.T(), suite.db, name, role)
		suite.auth.Issue(name, testutil.Identity{Subject: user.Auth0ID, Role: role})
		suite.users[name] = user
	}
}

func (suite *OrderAcceptanceTestSuite) TearDownTest() {
	suite.server.Close()
}

// step performs one call and requires the expected status
func (suite *OrderAcceptanceTestSuite) step(status int, method, path, token string, body any) map[string]interface{} {
	resp, response := testutil.Do(suite.T(), suite.client, testutil.JSONRequest(suite.T(), method, suite.server.URL+path, token, body))
	suite.Require().Equal(status, resp.StatusCode, "%s %s as %s: %v", method, path, token, response)
	return response
}

func (suite *OrderAcceptanceTestSuite) TestPrintJobFromSubmissionToDelivery() {
	created := suite.step(http.StatusCreated, http.MethodPost, "/api/v1/orders", "printshop-client", map[string]interface{}{
		"title":       "Trade show roll-up",
		"description": "850x2000 roll-up banner with stand",
		"order_type":  "New Design",
		"priority":    "High",
		"specifications": map[string]interface{}{
			"material":   "PVC-free film",
			"dimensions": map[string]interface{}{"width": 850, "height": 2000},
			"quantity":   2,
			"colors":     4,
		},
		"deadline": time.Now().Add(5 * 24 * time.Hour).UTC().Format(time.RFC3339),
	})
	order := testutil.Data(created)
	base := fmt.Sprintf("/api/v1/orders/%v", order["id"])
	tech := suite.users["prepress-tech"].ID
	operator := suite.users["press-operator"].ID

	suite.step(http.StatusOK, http.MethodPut, base+"/assign", "floor-manager", map[string]interface{}{"stage": "review", "employee_id": tech})
	suite.step(http.StatusOK, http.MethodPut, base+"/assign", "floor-manager", map[string]interface{}{"stage": "prepress", "employee_id": tech})
	suite.step(http.StatusOK, http.MethodPut, base+"/assign", "owner", map[string]interface{}{"stage": "production", "employee_id": operator})
	suite.step(http.StatusOK, http.MethodPut, base+"/assign", "owner", map[string]interface{}{"stage": "delivery", "employee_id": operator})

	suite.step(http.StatusOK, http.MethodPut, base, "floor-manager", map[string]interface{}{
		"estimated_cost": 480,
		"stage_notes":    map[string]interface{}{"prepress": "Bleed 5mm on all sides"},
	})

	for _, move := range []struct {
		token  string
		status string
	}{
		{"prepress-tech", "Approved"},
		{"prepress-tech", "In Prepress"},
		{"prepress-tech", "Ready for Production"},
		{"press-operator", "In Production"},
		{"press-operator", "Completed"},
		{"press-operator", "Delivered"},
	} {
		suite.step(http.StatusOK, http.MethodPut, base+"/status", move.token, map[string]interface{}{"status": move.status})
	}

	delivered := suite.step(http.StatusOK, http.MethodGet, "/api/v1/orders?status=Delivered", "printshop-client", nil)
	orders := testutil.List(delivered)
	suite.Require().Len(orders, 1)
	final := orders[0].(map[string]interface{})
	suite.Equal("Delivered", final["status"])
	suite.Equal(float64(480), final["cost"].(map[string]interface{})["estimated_cost"])
	stages := final["stages"].(map[string]interface{})
	suite.Equal("Bleed 5mm on all sides", stages["prepress"].(map[string]interface{})["notes"])
	suite.Equal(float64(operator), stages["delivery"].(map[string]interface{})["assigned_to"])

	operatorView := suite.step(http.StatusOK, http.MethodGet, "/api/v1/orders", "press-operator", nil)
	suite.Len(testutil.List(operatorView), 1)

	suite.step(http.StatusNotFound, http.MethodGet, "/api/v1/orders/9999", "owner", nil)
}

func (suite *OrderAcceptanceTestSuite) TestDeliveredOrderClaimIsRejected() {
	created := suite.step(http.StatusCreated, http.MethodPost, "/api/v1/orders", "printshop-client", map[string]interface{}{
		"title":      "Letterheads",
		"order_type": "Reprint",
		"specifications": map[string]interface{}{
			"material":   "120gsm bond",
			"dimensions": map[string]interface{}{"width": 210, "height": 297},
			"quantity":   1000,
			"colors":     2,
		},
		"deadline": time.Now().Add(5 * 24 * time.Hour).UTC().Format(time.RFC3339),
	})
	orderID := testutil.ID(created)
	suite.step(http.StatusOK, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status", orderID), "owner",
		map[string]interface{}{"status": "Delivered"})

	filed := suite.step(http.StatusCreated, http.MethodPost, "/api/v1/claims", "printshop-client", map[string]interface{}{
		"order_id":    orderID,
		"title":       "Wrong paper weight",
		"description": "Feels like 80gsm",
		"claim_type":  "Wrong Item",
		"severity":    "Low",
	})
	claimBase := fmt.Sprintf("/api/v1/claims/%d", testutil.ID(filed))
	tech := suite.users["prepress-tech"].ID

	suite.step(http.StatusConflict, http.MethodPut, claimBase+"/status", "printshop-client", map[string]interface{}{"status": "Closed"})
	suite.step(http.StatusOK, http.MethodPut, claimBase+"/assign", "floor-manager", map[string]interface{}{"employee_id": tech})
	suite.step(http.StatusBadRequest, http.MethodPut, claimBase+"/status", "prepress-tech", map[string]interface{}{"status": "Rejected"})

	rejected := suite.step(http.StatusOK, http.MethodPut, claimBase+"/status", "prepress-tech", map[string]interface{}{
		"status":     "Rejected",
		"notes":      "Delivery note confirms 120gsm",
		"resolution": map[string]interface{}{"action": "No action", "details": "Stock matches the order"},
	})
	suite.Equal("Rejected", testutil.Data(rejected)["status"])

	seen := suite.step(http.StatusOK, http.MethodGet, claimBase, "printshop-client", nil)
	claim := testutil.Data(seen)
	suite.Equal("No action", claim["resolution"].(map[string]interface{})["action"])
	suite.Equal("prepress-tech", claim["assignee"].(map[string]interface{})["name"])

	listed := suite.step(http.StatusOK, http.MethodGet, "/api/v1/claims?severity=Low", "floor-manager", nil)
	suite.Len(testutil.List(listed), 1)
	suite.Equal(float64(1), listed["pagination"].(map[string]interface{})["total"])
}

func TestOrderAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderAcceptanceTestSuite))
}

package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/services"
	"github.com/kendall-kelly/prepress-orders-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// FileUploadIntegrationTestSuite uploads attachments through the S3 backed storage
type FileUploadIntegrationTestSuite struct {
	suite.Suite
	auth        *testutil.TokenAuth
	router      *gin.Engine
	db          *gorm.DB
	mockS3      *services.MockS3Service
	prevConfig  *config.Config
	prevStorage services.FileStorage

	orderID uint
	erin    models.User
}

func (suite *FileUploadIntegrationTestSuite) SetupSuite() {
	suite.prevConfig = config.GetConfig()
	suite.prevStorage = services.GetFileStorage()
	testutil.LoadTestConfig(suite.T())
	suite.auth = testutil.NewTokenAuth()
}

func (suite *FileUploadIntegrationTestSuite) TearDownSuite() {
	config.SetConfig(suite.prevConfig)
	services.SetFileStorage(suite.prevStorage)
}

func (suite *FileUploadIntegrationTestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	suite.router = testutil.NewAPIRouter(suite.auth.Middleware())

	suite.mockS3 = services.NewMockS3Service()
	services.SetFileStorage(services.NewS3FileStorage(suite.mockS3))

	for name, role := range map[string]models.Role{
		"client":  models.RoleClient,
		"erin":    models.RoleEmployee,
		"frank":   models.RoleEmployee,
		"manager": models.RoleManager,
	} {
		user := testutil.SeedUser(suite.T(), suite.db, name, role)
		suite.auth.Issue(name, testutil.Identity{Subject: user.Auth0ID, Role: role})
		if name == "erin" {
			suite.erin = user
		}
	}

	w, response := testutil.Serve(suite.T(), suite.router, testutil.JSONRequest(suite.T(), http.MethodPost, "/api/v1/orders", "client", map[string]interface{}{
		"title":      "Shop window decal",
		"order_type": "Reprint",
		"specifications": map[string]interface{}{
			"material":   "Vinyl",
			"dimensions": map[string]interface{}{"width": 120, "height": 80, "unit": "cm"},
			"quantity":   1,
			"colors":     2,
		},
		"deadline": time.Now().Add(7 * 24 * time.Hour).UTC().Format(time.RFC3339),
	}))
	suite.Require().Equal(http.StatusCreated, w.Code, "Response body: %s", w.Body.String())
	suite.orderID = testutil.ID(response)
}

func (suite *FileUploadIntegrationTestSuite) upload(path, token, filename, content, fileType string) (*httptest.ResponseRecorder, map[string]interface{}) {
	return testutil.Serve(suite.T(), suite.router, testutil.UploadRequest(suite.T(), path, token, filename, []byte(content), fileType))
}

func (suite *FileUploadIntegrationTestSuite) TestClientUploadsArtwork() {
	path := fmt.Sprintf("/api/v1/orders/%d/files", suite.orderID)

	w, response := suite.upload(path, "client", "logo.ai", "%!PS-Adobe", "design")
	suite.Require().Equal(http.StatusCreated, w.Code, "Response body: %s", w.Body.String())

	key := fmt.Sprintf("attachments/orders/%d/mock_logo.ai", suite.orderID)
	content, ok := suite.mockS3.GetFileContent(key)
	suite.Require().True(ok, "uploaded under %s", key)
	suite.Equal("%!PS-Adobe", string(content))

	data := testutil.Data(response)
	suite.Equal("logo.ai", data["original_name"])
	suite.Equal("design", data["file_type"])
	suite.True(strings.HasPrefix(data["url"].(string), "https://test-bucket.s3.us-east-1.amazonaws.com/"+key))
	suite.NotContains(data, "storage_key")

	var attachment models.Attachment
	suite.Require().NoError(suite.db.First(&attachment).Error)
	suite.Equal(key, attachment.StorageKey)
	suite.Equal("orders", attachment.EntityType)
}

func (suite *FileUploadIntegrationTestSuite) TestOnlyAssignedStaffCanAttach() {
	path := fmt.Sprintf("/api/v1/orders/%d/files", suite.orderID)

	w, response := suite.upload(path, "erin", "proof.pdf", "%PDF", "proof")
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("NOT_AUTHORIZED", testutil.ErrorCode(response))
	suite.False(suite.mockS3.FileExists(fmt.Sprintf("attachments/orders/%d/mock_proof.pdf", suite.orderID)))

	w, _ = testutil.Serve(suite.T(), suite.router, testutil.JSONRequest(suite.T(), http.MethodPut,
		fmt.Sprintf("/api/v1/orders/%d/assign", suite.orderID), "manager",
		map[string]interface{}{"stage": "prepress", "employee_id": suite.erin.ID}))
	suite.Require().Equal(http.StatusOK, w.Code)

	w, _ = suite.upload(path, "erin", "proof.pdf", "%PDF", "proof")
	suite.Require().Equal(http.StatusCreated, w.Code, "Response body: %s", w.Body.String())

	w, _ = suite.upload(path, "frank", "other.pdf", "%PDF", "proof")
	suite.Equal(http.StatusForbidden, w.Code)

	w, response = testutil.Serve(suite.T(), suite.router, testutil.JSONRequest(suite.T(), http.MethodGet, path, "manager", nil))
	suite.Require().Equal(http.StatusOK, w.Code)
	files := testutil.List(response)
	suite.Require().Len(files, 1)
	file := files[0].(map[string]interface{})
	suite.Equal("proof", file["file_type"])
	suite.Equal(float64(suite.erin.ID), file["uploaded_by"])
	suite.Contains(file["url"], "mock=true")
}

func (suite *FileUploadIntegrationTestSuite) TestClaimEvidence() {
	w, response := testutil.Serve(suite.T(), suite.router, testutil.JSONRequest(suite.T(), http.MethodPost, "/api/v1/claims", "client", map[string]interface{}{
		"order_id":    suite.orderID,
		"title":       "Bubbles under the film",
		"description": "Air bubbles across the left corner",
		"claim_type":  "Quality Issue",
	}))
	suite.Require().Equal(http.StatusCreated, w.Code, "Response body: %s", w.Body.String())
	claimID := testutil.ID(response)
	path := fmt.Sprintf("/api/v1/claims/%d/files", claimID)

	w, _ = suite.upload(path, "client", "bubbles.jpg", "jpeg-bytes", "claim")
	suite.Require().Equal(http.StatusCreated, w.Code, "Response body: %s", w.Body.String())
	suite.True(suite.mockS3.FileExists(fmt.Sprintf("attachments/claims/%d/mock_bubbles.jpg", claimID)))

	w, response = suite.upload(path, "client", "notes.docx", "zip-bytes", "claim")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("INVALID_FILE_FORMAT", testutil.ErrorCode(response))

	w, response = testutil.Serve(suite.T(), suite.router, testutil.JSONRequest(suite.T(), http.MethodGet,
		fmt.Sprintf("/api/v1/claims/%d", claimID), "client", nil))
	suite.Require().Equal(http.StatusOK, w.Code)
	history := testutil.Data(response)["history"].([]interface{})
	suite.Require().Len(history, 2)
	suite.Equal("File Uploaded", history[1].(map[string]interface{})["action"])

	var orderFiles int64
	suite.Require().NoError(suite.db.Model(&models.Attachment{}).Where("entity_type = ?", "orders").Count(&orderFiles).Error)
	suite.Zero(orderFiles)
}

func TestFileUploadIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(FileUploadIntegrationTestSuite))
}

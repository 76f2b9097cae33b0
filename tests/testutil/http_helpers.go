package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/controllers"
	"github.com/stretchr/testify/require"
)

// NewAPIRouter mounts every API route under /api/v1 behind authenticate
func NewAPIRouter(authenticate gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controllers.RegisterRoutes(router.Group("/api/v1"), authenticate)
	return router
}

// JSONRequest builds a request with an optional JSON body and bearer token
func JSONRequest(t *testing.T, method, url, token string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// UploadRequest builds a multipart upload with a "file" part and an optional file_type field
func UploadRequest(t *testing.T, url, token, filename string, content []byte, fileType string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if fileType != "" {
		require.NoError(t, writer.WriteField("file_type", fileType))
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// Serve runs req through handler in-process and decodes the JSON envelope
func Serve(t *testing.T, handler http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, decode(t, w.Body.Bytes())
}

// Do sends req over the network and decodes the JSON envelope
func Do(t *testing.T, client *http.Client, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, decode(t, raw)
}

func decode(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()

	if len(raw) == 0 {
		return nil
	}
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &response), "Response body: %s", raw)
	return response
}

// Data returns the "data" object of a success envelope
func Data(response map[string]interface{}) map[string]interface{} {
	data, _ := response["data"].(map[string]interface{})
	return data
}

// List returns the "data" array of a list envelope
func List(response map[string]interface{}) []interface{} {
	items, _ := response["data"].([]interface{})
	return items
}

// ErrorCode returns error.code of a failure envelope
func ErrorCode(response map[string]interface{}) string {
	errData, _ := response["error"].(map[string]interface{})
	code, _ := errData["code"].(string)
	return code
}

// ID returns data.id as a uint
func ID(response map[string]interface{}) uint {
	id, _ := Data(response)["id"].(float64)
	return uint(id)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/verifake/verifake_server/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

// fakeBlobStore 内存对象存储
type fakeBlobStore struct {
	objects map[string][]byte
	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) UploadFile(objectKey string, data []byte, contentType string) (string, error) {
	f.objects[objectKey] = data
	return f.GetURL(objectKey), nil
}

func (f *fakeBlobStore) Delete(objectKey string) error {
	delete(f.objects, objectKey)
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func (f *fakeBlobStore) GetURL(objectKey string) string {
	return "https://cdn.example.com/" + objectKey
}

// fakeVendorClient 可编程的检测 API
type fakeVendorClient struct {
	result map[string]interface{}
	fail   bool
}

func (f *fakeVendorClient) Check(ctx context.Context, image []byte, filename, model string) (map[string]interface{}, error) {
	if f.fail {
		return nil, errors.New("vendor unavailable")
	}
	if f.result != nil {
		return f.result, nil
	}
	return map[string]interface{}{
		"status": "success",
		"type":   map[string]interface{}{"deepfake": 0.92},
	}, nil
}

// fakeMailer 丢弃所有邮件
type fakeMailer struct{}

func (fakeMailer) SendWelcome(to, name string) error { return nil }

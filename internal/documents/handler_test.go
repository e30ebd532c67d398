package documents_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"sow-backend/internal/documents"
	"sow-backend/internal/shared/storage/object/local"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &documents.Service{
		Store: local.New(t.TempDir()),
		Repo:  documents.NewMemoryRepo(),
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "guest:test-guest")
		c.Set("isGuest", false)
		c.Next()
	})
	documents.NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func uploadRequest(t *testing.T, fileName string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestDocumentsUploadAndCurrent(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, uploadRequest(t, "contract.pdf", []byte("%PDF-1.4 test")))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		DocumentID string `json:"documentId"`
		FileName   string `json:"fileName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.DocumentID == "" {
		t.Fatalf("expected documentId, got empty")
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/documents/current", nil)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)

	if respGet.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", respGet.Code)
	}

	var current struct {
		DocumentID string `json:"documentId"`
		FileName   string `json:"fileName"`
	}
	if err := json.NewDecoder(respGet.Body).Decode(&current); err != nil {
		t.Fatalf("decode current response: %v", err)
	}
	if current.FileName != "contract.pdf" {
		t.Fatalf("expected fileName contract.pdf, got %s", current.FileName)
	}
	if current.DocumentID != created.DocumentID {
		t.Fatalf("expected current document %s, got %s", created.DocumentID, current.DocumentID)
	}
}

func TestDocumentsUploadRejectsUnsupportedType(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, uploadRequest(t, "notes.txt", []byte("hello world")))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for .txt upload, got %d", resp.Code)
	}
}

func TestDocumentsList(t *testing.T) {
	router := newTestRouter(t)

	for _, name := range []string{"first.pdf", "second.docx"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, uploadRequest(t, name, []byte("content")))
		if resp.Code != http.StatusCreated {
			t.Fatalf("upload %s: expected 201, got %d", name, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var listed []struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(listed))
	}
}

func TestDocumentsGetByID(t *testing.T) {
	router := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, uploadRequest(t, "contract.docx", []byte("content")))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var created struct {
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID, nil)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, req)
	if respGet.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", respGet.Code)
	}

	reqMissing := httptest.NewRequest(http.MethodGet, "/api/v1/documents/does-not-exist", nil)
	respMissing := httptest.NewRecorder()
	router.ServeHTTP(respMissing, reqMissing)
	if respMissing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", respMissing.Code)
	}
}

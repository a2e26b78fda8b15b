package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap/zaptest"
)

func makeAppWithUploadHandler(t *testing.T, dir string, max int64) *fiber.App {
	app := fiber.New()
	NewHandler(NewStore(dir, max), zaptest.NewLogger(t)).RegisterRoutes(app)
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res.StatusCode, out
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", "/api/v1/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadRoutes_UploadThenDelete(t *testing.T) {
	dir := t.TempDir()
	app := makeAppWithUploadHandler(t, dir, 1<<20)

	status, body := do(t, app, multipartRequest(t, "image", "drone.png", pngHeader))
	if status != fiber.StatusOK || body["success"] != true {
		t.Fatalf("unexpected upload response %d %v", status, body)
	}
	name, _ := body["filename"].(string)
	if body["imageUrl"] != "/uploads/"+name {
		t.Fatalf("unexpected imageUrl %v", body["imageUrl"])
	}
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Fatalf("file not stored: %v", err)
	}

	status, body = do(t, app, httptest.NewRequest("DELETE", "/api/v1/upload?filename="+name, nil))
	if status != fiber.StatusOK || body["message"] != "Image deleted successfully" {
		t.Fatalf("unexpected delete response %d %v", status, body)
	}

	status, body = do(t, app, httptest.NewRequest("DELETE", "/api/v1/upload?filename="+name, nil))
	if status != fiber.StatusNotFound || body["message"] != "File not found" {
		t.Fatalf("expected 404 on second delete, got %d %v", status, body)
	}
}

func TestUploadRoutes_Errors(t *testing.T) {
	dir := t.TempDir()
	app := makeAppWithUploadHandler(t, dir, 64)

	status, body := do(t, app, multipartRequest(t, "file", "drone.png", pngHeader))
	if status != fiber.StatusBadRequest || body["message"] != "No file uploaded" {
		t.Fatalf("expected missing field error, got %d %v", status, body)
	}

	status, body = do(t, app, multipartRequest(t, "image", "notes.png", []byte("plain text pretending")))
	if status != fiber.StatusBadRequest || body["message"] != "Invalid file type. Only images are allowed." {
		t.Fatalf("expected type error, got %d %v", status, body)
	}

	big := append(append([]byte{}, pngHeader...), make([]byte, 128)...)
	status, body = do(t, app, multipartRequest(t, "image", "big.png", big))
	msg, _ := body["message"].(string)
	if status != fiber.StatusBadRequest || !strings.HasPrefix(msg, "File too large") {
		t.Fatalf("expected size error, got %d %v", status, body)
	}

	status, body = do(t, app, httptest.NewRequest("DELETE", "/api/v1/upload", nil))
	if status != fiber.StatusBadRequest || body["message"] != "Filename is required" {
		t.Fatalf("expected filename error, got %d %v", status, body)
	}

	status, body = do(t, app, httptest.NewRequest("DELETE", "/api/v1/upload?filename=..", nil))
	if status != fiber.StatusBadRequest || body["message"] != "Invalid filename" {
		t.Fatalf("expected parent directory to be refused, got %d %v", status, body)
	}

	status, _ = do(t, app, httptest.NewRequest("GET", "/api/v1/upload", nil))
	if status != fiber.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", status)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("no files should be stored, found %d", len(entries))
	}
}

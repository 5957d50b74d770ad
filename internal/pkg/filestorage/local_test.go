package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// makeFileHeader builds a multipart.FileHeader the way an HTTP upload would
func makeFileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart form: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestSaveFileWithPath(t *testing.T) {
	base := t.TempDir()
	storage, err := NewLocalStorage(base, "http://localhost:8080/uploads")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	header := makeFileHeader(t, "avatar.png", "png-bytes")
	url, err := storage.SaveFileWithPath(header, "avatars")
	if err != nil {
		t.Fatalf("SaveFileWithPath: %v", err)
	}

	if !strings.HasPrefix(url, "http://localhost:8080/uploads/avatars/") {
		t.Errorf("url = %q, want avatars subdirectory under base URL", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %q, want original extension kept", url)
	}

	saved := filepath.Join(base, "avatars", filepath.Base(url))
	data, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("saved content = %q", data)
	}
}

func TestSaveFileNilHeader(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	url, err := storage.SaveFile(nil)
	if err != nil {
		t.Fatalf("SaveFile(nil): %v", err)
	}
	if url != "" {
		t.Errorf("url = %q, want empty for nil header", url)
	}
}

func TestDeleteFile(t *testing.T) {
	base := t.TempDir()
	storage, err := NewLocalStorage(base, "http://localhost:8080/uploads")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	header := makeFileHeader(t, "avatar.jpg", "jpg-bytes")
	url, err := storage.SaveFileWithPath(header, "avatars")
	if err != nil {
		t.Fatalf("SaveFileWithPath: %v", err)
	}

	if err := storage.DeleteFile(url); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	saved := filepath.Join(base, "avatars", filepath.Base(url))
	if _, err := os.Stat(saved); !os.IsNotExist(err) {
		t.Errorf("file still exists after delete")
	}

	// Deleting again is idempotent
	if err := storage.DeleteFile(url); err != nil {
		t.Errorf("second DeleteFile: %v", err)
	}
}

func TestDeleteFileEmptyPath(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	if err := storage.DeleteFile(""); err != nil {
		t.Errorf("DeleteFile(empty): %v", err)
	}
}

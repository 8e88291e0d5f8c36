package main

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func TestRun_InstallsModel(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"vosk-model-small-en-us-0.15/README":        "model readme",
		"vosk-model-small-en-us-0.15/conf/model.conf": "config",
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "model")
	if err := run(server.URL, dest); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	// The versioned wrapper directory is unwrapped into dest
	data, err := os.ReadFile(filepath.Join(dest, "README"))
	if err != nil {
		t.Fatalf("failed to read installed file: %v", err)
	}
	if string(data) != "model readme" {
		t.Errorf("installed README = %q; want %q", data, "model readme")
	}
	if _, err := os.Stat(filepath.Join(dest, "conf", "model.conf")); err != nil {
		t.Errorf("nested file missing after install: %v", err)
	}
}

func TestRun_ReplacesExistingModel(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"model-v2/weights": "new weights",
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "model")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatalf("failed to create old model dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dest, "stale"), []byte("old"), 0o644); err != nil {
		t.Fatalf("failed to write stale file: %v", err)
	}

	if err := run(server.URL, dest); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dest, "stale")); !os.IsNotExist(err) {
		t.Error("stale file survived the reinstall")
	}
	if _, err := os.Stat(filepath.Join(dest, "weights")); err != nil {
		t.Errorf("new model file missing: %v", err)
	}
}

func TestRun_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "model")
	if err := run(server.URL, dest); err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("dest should not exist after failed download")
	}
}

func TestExtract_RejectsEscapingEntries(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"../escape": "bad",
	})

	tmp := t.TempDir()
	archivePath := filepath.Join(tmp, "bad.zip")
	if err := os.WriteFile(archivePath, archive, 0o644); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}

	if err := extract(archivePath, filepath.Join(tmp, "out")); err == nil {
		t.Fatal("expected error for path traversal entry")
	}
}

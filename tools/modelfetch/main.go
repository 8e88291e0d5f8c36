// Command modelfetch downloads and unpacks the offline speech recognition
// model used for voice journaling. The target directory is replaced
// atomically: the archive is extracted to a staging directory first.
package main

import (
	"archive/zip"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultModelURL = "https://alphacephei.com/vosk/models/vosk-model-small-en-us-0.15.zip"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	url := flag.String("url", defaultModelURL, "speech model archive URL")
	dest := flag.String("dest", "model", "directory to install the model into")
	flag.Parse()

	if err := run(*url, *dest); err != nil {
		slog.Error("Model fetch failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Model installed", "dest", *dest)
}

func run(url, dest string) error {
	archivePath, err := download(url)
	if err != nil {
		return err
	}
	defer os.Remove(archivePath)

	staging, err := os.MkdirTemp(filepath.Dir(dest), ".modelfetch-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := extract(archivePath, staging); err != nil {
		return err
	}

	// Archives wrap the model in a single versioned directory; install
	// that directory as dest.
	root, err := modelRoot(staging)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to remove old model: %w", err)
	}
	if err := os.Rename(root, dest); err != nil {
		return fmt.Errorf("failed to install model: %w", err)
	}
	return nil
}

func download(url string) (string, error) {
	slog.Info("Downloading model", "url", url)

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status downloading model: %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "modelfetch-*.zip")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer tmp.Close()

	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write archive: %w", err)
	}

	slog.Info("Download complete", "bytes", written)
	return tmp.Name(), nil
}

func extract(archivePath, dest string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := extractFile(file, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(file *zip.File, dest string) error {
	path := filepath.Join(dest, file.Name)

	// Reject entries that escape the destination directory
	if !strings.HasPrefix(path, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry escapes destination: %s", file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode())
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to extract %s: %w", file.Name, err)
	}
	return nil
}

func modelRoot(staging string) (string, error) {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return "", fmt.Errorf("failed to read staging directory: %w", err)
	}

	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(staging, entries[0].Name()), nil
	}
	// Flat archive, install the staging directory itself
	return staging, nil
}

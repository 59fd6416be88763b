package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestManager(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// Test initial state
	if manager.GetArtifactCount() != 0 {
		t.Error("Expected initial artifact count to be 0")
	}
	if manager.Exists("coffee_20240101_120000.json") {
		t.Error("Expected Exists to return false for non-existent file")
	}

	// Test SaveArtifact
	testData := []byte(`{"pins": []}`)
	path, err := manager.SaveArtifact("coffee_20240101_120000.json", func(w io.Writer) error {
		_, err := w.Write(testData)
		return err
	})
	if err != nil {
		t.Fatalf("Failed to save artifact: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "coffee_20240101_120000.json")
	if path != expectedPath {
		t.Errorf("Expected path %s, got %s", expectedPath, path)
	}
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Error("Expected file to be created")
	}

	content, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(content, testData) {
		t.Error("File content does not match expected data")
	}

	if !manager.Exists("coffee_20240101_120000.json") {
		t.Error("Expected Exists to return true for saved artifact")
	}
	if manager.GetArtifactCount() != 1 {
		t.Errorf("Expected artifact count to be 1, got %d", manager.GetArtifactCount())
	}

	// Scanning should pick up files created outside the manager
	manualFile := filepath.Join(tempDir, "latte_20240101_130000.csv")
	if err := os.WriteFile(manualFile, []byte("pin_id\n"), 0644); err != nil {
		t.Fatalf("Failed to create manual file: %v", err)
	}

	manager2, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create second manager: %v", err)
	}
	if manager2.GetArtifactCount() != 2 {
		t.Errorf("Expected artifact count to be 2 after scanning, got %d", manager2.GetArtifactCount())
	}

	names := manager2.ListArtifacts()
	if len(names) != 2 || names[0] != "coffee_20240101_120000.json" || names[1] != "latte_20240101_130000.csv" {
		t.Errorf("Unexpected artifact list: %v", names)
	}
}

func TestSaveArtifactWriteFailure(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	wantErr := errors.New("encode failed")
	_, err = manager.SaveArtifact("broken.json", func(w io.Writer) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected wrapped write error, got %v", err)
	}

	// Neither the final file nor the temp file should remain
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty output dir after failed write, found %d entries", len(entries))
	}
	if manager.Exists("broken.json") {
		t.Error("Failed artifact should not be tracked")
	}
}

func TestScanIgnoresOtherFiles(t *testing.T) {
	tempDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tempDir, "sub.json"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if manager.GetArtifactCount() != 0 {
		t.Errorf("Expected 0 artifacts, got %d", manager.GetArtifactCount())
	}
}

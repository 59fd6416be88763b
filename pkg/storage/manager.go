package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// exportExtensions are the artifact types the manager tracks
var exportExtensions = map[string]bool{
	".xlsx": true,
	".json": true,
	".csv":  true,
}

// Manager handles the output directory and export artifact writes
type Manager struct {
	outputDir string
	artifacts map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a new storage manager rooted at outputDir
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		artifacts: make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles indexes export artifacts already present in the output directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && exportExtensions[filepath.Ext(entry.Name())] {
			m.artifacts[entry.Name()] = true
		}
	}

	return nil
}

// SaveArtifact writes an export artifact atomically. The write callback
// receives the destination; the file only becomes visible under its final
// name after the callback succeeds.
func (m *Manager) SaveArtifact(filename string, write func(io.Writer) error) (string, error) {
	finalPath := filepath.Join(m.outputDir, filename)
	tempPath := finalPath + ".tmp"

	out, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	writeErr := write(out)
	closeErr := out.Close()

	if writeErr != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write artifact data: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.artifacts[filename] = true
	m.mu.Unlock()

	return finalPath, nil
}

// Exists checks whether an artifact with the given filename has been written
func (m *Manager) Exists(filename string) bool {
	m.mu.RLock()
	known := m.artifacts[filename]
	m.mu.RUnlock()
	if known {
		return true
	}

	if _, err := os.Stat(filepath.Join(m.outputDir, filename)); err == nil {
		m.mu.Lock()
		m.artifacts[filename] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// ListArtifacts returns the sorted filenames of known export artifacts
func (m *Manager) ListArtifacts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.artifacts))
	for name := range m.artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetArtifactCount returns the number of known export artifacts
func (m *Manager) GetArtifactCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.artifacts)
}

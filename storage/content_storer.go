package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// fingerprintPrefixLen keeps archive directory names short.
const fingerprintPrefixLen = 12

// MessageStorer archives rendered messages.
type MessageStorer interface {
	// Store saves body for a plan day and returns the path relative to the
	// archive root.
	Store(planFingerprint string, day int, body []byte) (relativeStoragePath string, err error)
}

// LocalFileStorer writes messages under a base directory:
// <basePath>/messages/<fingerprint[:12]>/day-<NNN>.html
type LocalFileStorer struct {
	basePath string
}

func NewLocalFileStorer(basePath string) *LocalFileStorer {
	return &LocalFileStorer{basePath: basePath}
}

func (lfs *LocalFileStorer) Store(planFingerprint string, day int, body []byte) (string, error) {
	if planFingerprint == "" {
		return "", fmt.Errorf("plan fingerprint cannot be empty for storing a message")
	}
	if day < 1 {
		return "", fmt.Errorf("day must be positive, got %d", day)
	}

	planDir := planFingerprint
	if len(planDir) > fingerprintPrefixLen {
		planDir = planDir[:fingerprintPrefixLen]
	}

	relativeDir := filepath.Join("messages", planDir)
	fileName := fmt.Sprintf("day-%03d.html", day)
	relativeStoragePath := filepath.Join(relativeDir, fileName)

	fullStorageDir := filepath.Join(lfs.basePath, relativeDir)
	if err := os.MkdirAll(fullStorageDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	fullStoragePath := filepath.Join(fullStorageDir, fileName)
	if err := os.WriteFile(fullStoragePath, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to archive message: %w", err)
	}

	log.Printf("INFO (LocalFileStorer): Archived message to %s", fullStoragePath)
	return relativeStoragePath, nil
}

// Package filestore implements store.Store on a single JSON document. It is
// the fallback when no database is configured.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"teamdesk/models"
)

// FileName is the document name inside the data directory.
const FileName = "store.json"

// Document is the whole persisted state.
type Document struct {
	Workspaces    []models.Workspace    `json:"workspaces"`
	Teams         []models.Team         `json:"teams"`
	Members       []models.Member       `json:"members"`
	Roles         []models.Role         `json:"roles"`
	Invitations   []models.Invitation   `json:"invitations"`
	Projects      []models.Project      `json:"projects"`
	Issues        []models.Issue        `json:"issues"`
	Milestones    []models.Milestone    `json:"milestones"`
	StatusUpdates []models.StatusUpdate `json:"statusUpdates"`
	Comments      []models.Comment      `json:"comments"`
	Views         []models.View         `json:"views"`
	Activity      []models.Activity     `json:"activity"`
	Notifications []models.Notification `json:"notifications"`
	Users         []userRecord          `json:"users"`
	APIKeys       []apiKeyRecord        `json:"apiKeys"`
}

// userRecord and apiKeyRecord keep the secret hashes that the public models
// never serialize.
type userRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r userRecord) model() models.User {
	return models.User{ID: r.ID, Email: r.Email, Name: r.Name, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

type apiKeyRecord struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	KeyHash    string     `json:"keyHash"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (r apiKeyRecord) model() models.APIKey {
	return models.APIKey{
		ID:         r.ID,
		UserID:     r.UserID,
		Name:       r.Name,
		Prefix:     r.Prefix,
		KeyHash:    r.KeyHash,
		LastUsedAt: r.LastUsedAt,
		CreatedAt:  r.CreatedAt,
	}
}

// ReadStore loads the document at path. A missing file yields an empty
// document; any other error is returned.
func ReadStore(path string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read store: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode store %s: %w", path, err)
	}
	return doc, nil
}

// WriteStore replaces the file at path with doc. The data is written to a
// temporary file in the same directory and renamed over the target.
func WriteStore(path string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

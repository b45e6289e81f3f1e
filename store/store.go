// Package store persists the script document and the topic history.
//
// Write-backs from later stages are additive field patches on the stored
// JSON, so fields the model returned but we do not model survive every
// round-trip.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/sjson"

	"mystery-shorts-pipeline/types"
)

var unsafeChars = regexp.MustCompile(`[^\w\s-]`)

// Slug derives the filesystem-safe document key from a topic.
func Slug(topic string) string {
	clean := unsafeChars.ReplaceAllString(topic, "")
	return strings.ReplaceAll(strings.TrimSpace(clean), " ", "_")
}

// DocPath returns the script document path for a topic.
func DocPath(topic string) string {
	return Slug(topic) + ".json"
}

// Save writes the document as indented JSON.
func Save(path string, doc *types.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a script document from disk.
func Load(path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	return &doc, nil
}

// Patch sets a single field on the stored document without rewriting
// the rest of the file. value may be a string, a []string, or anything
// else sjson can encode.
func Patch(path, field string, value interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document for patch: %w", err)
	}
	patched, err := sjson.SetBytesOptions(data, field, value, &sjson.Options{Optimistic: true})
	if err != nil {
		return fmt.Errorf("patch %s: %w", field, err)
	}
	return os.WriteFile(path, patched, 0644)
}

// ReadHistory returns the raw history file content, one topic per line.
// A missing file is an empty history.
func ReadHistory(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// AppendHistory records a chosen topic. The history only grows.
func AppendHistory(path, topic string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(topic + "\n")
	return err
}

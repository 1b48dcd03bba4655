package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// Marshal converts a document to indented JSON bytes.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeTo(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses JSON bytes into a document. It does not validate; call
// [Validate] for that.
func Unmarshal(data []byte) (Document, error) {
	return decodeFrom(bytes.NewReader(data))
}

// WriteFile writes a document to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return encodeTo(doc, f)
}

// Write writes a document as JSON to an io.Writer.
// Use Marshal for in-memory serialization or WriteFile for files.
func Write(doc Document, w io.Writer) error {
	return encodeTo(doc, w)
}

// ReadFile reads a JSON file and returns the decoded document.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return decodeFrom(f)
}

// Read decodes a JSON document from an io.Reader.
// Use ReadFile for files or pass bytes.NewReader for in-memory data.
func Read(r io.Reader) (Document, error) {
	return decodeFrom(r)
}

// =============================================================================
// Scene Serialization API
// =============================================================================

// MarshalScene converts a scene to indented JSON bytes.
func MarshalScene(s Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalScene parses JSON bytes into a scene.
func UnmarshalScene(data []byte) (Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return Scene{}, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func encodeTo(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func decodeFrom(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	if doc.Viewport.Zoom == 0 {
		doc.Viewport.Zoom = 1
	}
	return doc, nil
}

package persist

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemas    map[string]*jsonschema.Schema
	schemaErr  error
)

func schemaFile(name string) string {
	return "schemas/" + strings.TrimSuffix(name, ".json") + ".schema.json"
}

func compileSchemas() {
	schemas = make(map[string]*jsonschema.Schema, len(DocumentNames))
	for _, name := range DocumentNames {
		path := schemaFile(name)
		b, err := schemaFS.ReadFile(path)
		if err != nil {
			schemaErr = err
			return
		}
		s, err := jsonschema.CompileString(path, string(b))
		if err != nil {
			schemaErr = fmt.Errorf("compile %s: %w", path, err)
			return
		}
		schemas[name] = s
	}
}

// Schema returns the compiled schema for a document name.
func Schema(name string) (*jsonschema.Schema, error) {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return nil, schemaErr
	}
	s, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("no schema for %q", name)
	}
	return s, nil
}

// Decode validates raw against the document's schema and unmarshals it
// into out. Nothing is written to out when validation fails.
func Decode(name string, raw []byte, out any) error {
	s, err := Schema(name)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}
	return nil
}

// Encode renders a document as indented JSON.
func Encode(doc any) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Package snapshot reads, validates, and writes todo-list snapshot files.
package snapshot

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaVersion is the only snapshot format version understood.
const SchemaVersion = 1

const embeddedSchemaURL = "https://github.com/nibzard/todolist-go/snapshot.schema.json"

//go:embed snapshot.schema.json
var embeddedSchema []byte

// Item is one todo in a snapshot.
type Item struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// File is the snapshot file structure.
type File struct {
	SchemaVersion int    `json:"schema_version"`
	Text          string `json:"text,omitempty"`
	Todos         []Item `json:"todos"`

	raw []byte // as read by Load
}

// Remaining counts the unchecked todos.
func (f *File) Remaining() int {
	n := 0
	for _, item := range f.Todos {
		if !item.Checked {
			n++
		}
	}
	return n
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath overrides the built-in schema.
	SchemaPath string
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid    bool
	Errors   []error
	Warnings []string
}

// Err joins the validation errors, or returns nil when the file is valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("invalid snapshot: %s", strings.Join(msgs, "; "))
}

// Load reads and parses a snapshot file from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	return Parse(data)
}

// Parse decodes snapshot JSON. The bytes are kept for Validate.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse snapshot file: %w", err)
	}
	f.raw = data
	return &f, nil
}

// LoadValid loads path and rejects files that fail validation. The schema
// runs before decoding so type errors are reported with their location.
func LoadValid(path string, opts ValidationOptions) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	if err := ValidateBytes(data, opts).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Parse(data)
}

// Save writes the snapshot to path with 2-space indentation.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot file: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	return nil
}

// Validate checks the file against the JSON Schema. A file returned by Load
// is checked as it was read from disk, so unknown keys and missing fields are
// reported; other files are checked in their encoded form.
func (f *File) Validate(opts ValidationOptions) *ValidationResult {
	if len(f.raw) > 0 {
		return ValidateBytes(f.raw, opts)
	}
	data, err := json.Marshal(f)
	if err != nil {
		return &ValidationResult{
			Errors:   []error{&ValidationError{Err: fmt.Errorf("marshal for validation: %w", err)}},
			Warnings: make([]string, 0),
		}
	}
	return ValidateBytes(data, opts)
}

// ValidateBytes checks raw snapshot JSON against the JSON Schema.
func ValidateBytes(data []byte, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	schema, err := compileSchema(opts.SchemaPath)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		schema, err = compileSchema("")
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
			return result
		}
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("parse for validation: %w", err)})
		return result
	}

	if err := schema.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
	return result
}

func compileSchema(path string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if path == "" {
		if err := compiler.AddResource(embeddedSchemaURL, bytes.NewReader(embeddedSchema)); err != nil {
			return nil, fmt.Errorf("load built-in schema: %w", err)
		}
		return compiler.Compile(embeddedSchemaURL)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("schema file not found: %s", absPath)
	}
	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}
	return schema, nil
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}

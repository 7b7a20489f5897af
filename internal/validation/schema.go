package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrSchemaInvalid reports a schema that does not compile.
var ErrSchemaInvalid = errors.New("schema invalid")

// Schema validates JSON-shaped documents.
type Schema struct {
	compiled *jsonschema.Schema
}

// CompileSchema compiles a draft 2020-12 JSON schema.
func CompileSchema(name string, raw []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Schema{compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for schemas embedded in the binary.
func MustCompileSchema(name string, raw []byte) *Schema {
	schema, err := CompileSchema(name, raw)
	if err != nil {
		panic(err)
	}
	return schema
}

// Validate checks value after a JSON round trip, so struct tags decide the
// field names. Failures are returned as *Error under scope.
func (s *Schema) Validate(scope string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var doc any
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return err
	}
	if err := s.compiled.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &Error{Scope: scope, Issues: schemaIssues(verr)}
		}
		return err
	}
	return nil
}

func schemaIssues(err *jsonschema.ValidationError) []Issue {
	issues := []Issue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			field := strings.Trim(strings.TrimSpace(node.InstanceLocation), "/")
			if field == "" {
				field = "document"
			}
			issues = append(issues, Issue{Field: field, Message: strings.TrimSpace(node.Message)})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

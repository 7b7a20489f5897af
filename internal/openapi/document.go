// Package openapi builds a minimal OpenAPI description of the procedure API.
package openapi

import (
	"encoding/json"
	"strings"
)

const Version = "3.0.3"

// Document represents a minimal OpenAPI document.
type Document struct {
	OpenAPI    string                          `json:"openapi"`
	Info       Info                            `json:"info"`
	Paths      map[string]map[string]Operation `json:"paths"`
	Components Components                      `json:"components"`
	Extensions map[string]any                  `json:"-"`
}

// Info captures OpenAPI metadata.
type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Components aggregates schema and security components.
type Components struct {
	Schemas         map[string]any `json:"schemas,omitempty"`
	SecuritySchemes map[string]any `json:"securitySchemes,omitempty"`
}

// Operation is one method on a path.
type Operation struct {
	OperationID string                `json:"operationId"`
	Summary     string                `json:"summary,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Security    []map[string][]string `json:"security,omitempty"`
	RequestBody map[string]any        `json:"requestBody,omitempty"`
	Responses   map[string]any        `json:"responses"`
	Access      string                `json:"x-access,omitempty"`
}

// Procedure describes one registered procedure.
type Procedure struct {
	Name   string
	Kind   string
	Access string
}

const bearerScheme = "bearerAuth"

// NewDocument constructs a document with the shared envelope schemas.
func NewDocument(title, version string) *Document {
	d := &Document{
		OpenAPI:    Version,
		Info:       Info{Title: title, Version: version},
		Paths:      map[string]map[string]Operation{},
		Extensions: map[string]any{},
	}
	d.AddSchema("Result", map[string]any{
		"type":       "object",
		"properties": map[string]any{"result": map[string]any{}},
	})
	d.AddSchema("Error", map[string]any{
		"type":     "object",
		"required": []string{"error", "message"},
		"properties": map[string]any{
			"error":   map[string]any{"type": "string"},
			"message": map[string]any{"type": "string"},
			"issues": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"field":   map[string]any{"type": "string"},
						"message": map[string]any{"type": "string"},
					},
				},
			},
		},
	})
	d.Components.SecuritySchemes = map[string]any{
		bearerScheme: map[string]any{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
	}
	return d
}

// AddSchema registers a component schema.
func (d *Document) AddSchema(name string, schema map[string]any) {
	if d == nil || name == "" || schema == nil {
		return
	}
	if d.Components.Schemas == nil {
		d.Components.Schemas = map[string]any{}
	}
	d.Components.Schemas[name] = schema
}

// SetExtension sets a vendor extension on the document.
func (d *Document) SetExtension(key string, value any) {
	if d == nil || !strings.HasPrefix(key, "x-") {
		return
	}
	if d.Extensions == nil {
		d.Extensions = map[string]any{}
	}
	d.Extensions[key] = value
}

// AddProcedure describes proc at path. Queries are reachable with GET and
// POST, mutations with POST only. Non public procedures require a bearer
// token.
func (d *Document) AddProcedure(path string, proc Procedure) {
	if d == nil || proc.Name == "" {
		return
	}
	op := Operation{
		OperationID: proc.Name,
		Tags:        []string{tagFor(proc.Name)},
		Responses: map[string]any{
			"200":     response("Procedure result", "Result"),
			"default": response("Procedure error", "Error"),
		},
		Access: proc.Access,
	}
	if proc.Access != "" && proc.Access != "public" {
		op.Security = []map[string][]string{{bearerScheme: {}}}
	}

	methods := map[string]Operation{}
	post := op
	post.RequestBody = map[string]any{
		"required": false,
		"content": map[string]any{
			"application/json": map[string]any{"schema": map[string]any{"type": "object"}},
		},
	}
	methods["post"] = post
	if proc.Kind == "query" {
		get := op
		get.OperationID = proc.Name + ".get"
		methods["get"] = get
	}
	d.Paths[path] = methods
}

// MarshalJSON inlines extensions next to the standard fields.
func (d *Document) MarshalJSON() ([]byte, error) {
	type plain Document
	raw, err := json.Marshal((*plain)(d))
	if err != nil || len(d.Extensions) == 0 {
		return raw, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	for key, value := range d.Extensions {
		out[key] = value
	}
	return json.Marshal(out)
}

func response(description, schema string) map[string]any {
	return map[string]any{
		"description": description,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/" + schema},
			},
		},
	}
}

// tagFor groups dotted names by prefix and camel case names under manual.
func tagFor(name string) string {
	if prefix, _, ok := strings.Cut(name, "."); ok {
		return prefix
	}
	return "manual"
}

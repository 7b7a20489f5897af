package validation

import (
	"errors"
	"testing"
)

const widgetSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "count": {"type": "integer", "minimum": 0}
  }
}`

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSchemaValidateReportsFieldIssues(t *testing.T) {
	schema := MustCompileSchema("widget.json", []byte(widgetSchema))

	if err := schema.Validate("widgets", widget{Name: "ok", Count: 2}); err != nil {
		t.Fatalf("expected valid widget, got %v", err)
	}

	err := schema.Validate("widgets", widget{Name: "ok", Count: -1})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	issues := Issues(err)
	if len(issues) != 1 || issues[0].Field != "count" {
		t.Fatalf("expected one count issue, got %+v", issues)
	}
}

func TestCompileSchemaRejectsBrokenSchema(t *testing.T) {
	if _, err := CompileSchema("broken.json", []byte(`{"type": 12}`)); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestSchemaValidateDecodesNumbersExactly(t *testing.T) {
	schema := MustCompileSchema("widget.json", []byte(widgetSchema))

	if err := schema.Validate("widgets", map[string]any{"name": "ok", "count": 3}); err != nil {
		t.Fatalf("expected integer count to pass, got %v", err)
	}
	err := schema.Validate("widgets", map[string]any{"name": "ok", "count": 2.5})
	issues := Issues(err)
	if len(issues) != 1 || issues[0].Field != "count" {
		t.Fatalf("expected one count issue, got %+v", issues)
	}
}

package openapi

import (
	"encoding/json"
	"testing"
)

func TestAddProcedureMethodsAndSecurity(t *testing.T) {
	doc := NewDocument("Manual API", "1")
	doc.AddProcedure("/api/getTree", Procedure{Name: "getTree", Kind: "query", Access: "public"})
	doc.AddProcedure("/api/files.delete", Procedure{Name: "files.delete", Kind: "mutation", Access: "protected"})

	tree := doc.Paths["/api/getTree"]
	if _, ok := tree["get"]; !ok {
		t.Fatal("expected GET on query procedure")
	}
	if len(tree["post"].Security) != 0 {
		t.Fatal("expected public procedure without security")
	}
	if tree["post"].Tags[0] != "manual" {
		t.Fatalf("unexpected tag %q", tree["post"].Tags[0])
	}

	files := doc.Paths["/api/files.delete"]
	if _, ok := files["get"]; ok {
		t.Fatal("expected no GET on mutation")
	}
	if len(files["post"].Security) != 1 {
		t.Fatal("expected bearer security on protected procedure")
	}
	if files["post"].Tags[0] != "files" {
		t.Fatalf("unexpected tag %q", files["post"].Tags[0])
	}
}

func TestMarshalInlinesExtensions(t *testing.T) {
	doc := NewDocument("Manual API", "1")
	doc.SetExtension("x-procedures", 2)
	doc.SetExtension("ignored", true)

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["openapi"] != Version {
		t.Fatalf("unexpected version %v", out["openapi"])
	}
	if out["x-procedures"] != float64(2) {
		t.Fatalf("expected inlined extension, got %v", out["x-procedures"])
	}
	if _, ok := out["ignored"]; ok {
		t.Fatal("expected keys without x- prefix to be dropped")
	}
}

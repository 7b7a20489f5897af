package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsStable(t *testing.T) {
	first := CategoryUUID("Getting-Started")
	second := CategoryUUID(" getting-started ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected stable id, got %s and %s", first, second)
	}
}

func TestUUIDSeparatesEntities(t *testing.T) {
	category := CategoryUUID("setup")
	if ItemUUID(category, "setup") == category {
		t.Fatal("expected item and category ids to differ")
	}
	if ItemUUID(category, "a") == ItemUUID(CategoryUUID("other"), "a") {
		t.Fatal("expected item ids to depend on category")
	}
}

func TestUUIDBlankKey(t *testing.T) {
	if UUID("  ") != uuid.Nil {
		t.Fatal("expected nil uuid for blank key")
	}
}

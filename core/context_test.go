package core

import (
	"testing"

	"github.com/google/uuid"
)

func TestContext(t *testing.T) {
	t.Run("string id", func(t *testing.T) {
		c := NewContext("Order", "42")
		if c.DefinitionName() != "Order" {
			t.Errorf("unexpected definition name %q", c.DefinitionName())
		}
		if c.InstanceIDString() != "42" {
			t.Errorf("unexpected id %q", c.InstanceIDString())
		}
	})

	t.Run("numeric id", func(t *testing.T) {
		c := NewContext("Order", 7)
		if c.InstanceID() != 7 {
			t.Errorf("expected numeric id to be kept, got %v", c.InstanceID())
		}
		if c.InstanceIDString() != "7" {
			t.Errorf("unexpected id %q", c.InstanceIDString())
		}
	})

	t.Run("missing id", func(t *testing.T) {
		c := NewContext("Order", nil)
		if c.InstanceIDString() != "" {
			t.Errorf("expected empty id, got %q", c.InstanceIDString())
		}
	})

	t.Run("generated id", func(t *testing.T) {
		c := NewContextWithGeneratedID("Order")
		if _, err := uuid.Parse(c.InstanceIDString()); err != nil {
			t.Errorf("expected a UUID, got %q: %v", c.InstanceIDString(), err)
		}
		if NewContextWithGeneratedID("Order").InstanceID() == c.InstanceID() {
			t.Error("generated ids must differ")
		}
	})
}

func TestIsAbsent(t *testing.T) {
	var nilMap map[string]any
	var nilPtr *struct{}
	tests := []struct {
		name   string
		data   any
		absent bool
	}{
		{"nil", nil, true},
		{"nil map", nilMap, true},
		{"nil pointer", nilPtr, true},
		{"empty string", "", false},
		{"zero", 0, false},
		{"false", false, false},
		{"map", map[string]any{"a": 1}, false},
	}
	for _, tt := range tests {
		if got := IsAbsent(tt.data); got != tt.absent {
			t.Errorf("%s: IsAbsent = %v, want %v", tt.name, got, tt.absent)
		}
	}
}

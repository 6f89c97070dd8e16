package validation

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"simple", "customer_id", false},
		{"leading underscore", "_internal", false},
		{"mixed case", "CustomerID", false},
		{"empty", "", true},
		{"leading digit", "1field", true},
		{"dash", "customer-id", true},
		{"space", "customer id", true},
		{"too long", strings.Repeat("a", MaxNameLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.expectError {
				t.Errorf("ValidateName(%q) error = %v, expectError %v", tt.input, err, tt.expectError)
			}
		})
	}
}

type sample struct {
	Level string `validate:"required,oneof=debug info"`
	Depth int    `validate:"gte=0,lte=8"`
	Addr  string `validate:"omitempty,hostname_port"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name     string
		value    sample
		errorHas string
	}{
		{"valid", sample{Level: "info", Depth: 2, Addr: "localhost:9090"}, ""},
		{"missing level", sample{Depth: 1}, "sample.Level: field is required"},
		{"bad level", sample{Level: "trace"}, "sample.Level: must be one of [debug info]"},
		{"negative depth", sample{Level: "info", Depth: -1}, "sample.Depth: must be at least 0"},
		{"deep", sample{Level: "info", Depth: 9}, "sample.Depth: must not exceed 8"},
		{"bad addr", sample{Level: "info", Addr: "nope"}, "sample.Addr: must be host:port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.value)
			if tt.errorHas == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorHas) {
				t.Errorf("Expected error containing %q, got %v", tt.errorHas, err)
			}
		})
	}
}

func TestStruct_Nil(t *testing.T) {
	if err := Struct(nil); err == nil {
		t.Error("Expected error for nil value")
	}
}

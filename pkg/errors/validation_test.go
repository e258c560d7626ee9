package errors

import (
	"strings"
	"testing"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Login", false},
		{"valid with spaces", "Main module", false},
		{"valid cjk", "登入頁面", false},
		{"valid parentheses", "各種業績查詢頁面(有多個)", false},
		{"max length cjk", strings.Repeat("頁", 256), false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 257), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"tab", "foo\tbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTree) {
				t.Errorf("ValidateLabel(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidTree)
			}
		})
	}
}

func TestValidateNodeType(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"module", false},
		{"page", false},
		{"sub-page_2", false},

		{"Module", true},
		{"1page", true},
		{"page type", true},
		{strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		err := ValidateNodeType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateNodeType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative file", "router.svg", false},
		{"nested", "out/router.svg", false},
		{"absolute", "/tmp/router.svg", false},
		{"dotted name", "router..svg", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"traversal", "../router.svg", true},
		{"traversal nested", "out/../../etc", true},
		{"backslash traversal", "out\\..\\x", true},
		{"null byte", "out\x00.svg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSceneID(t *testing.T) {
	if err := ValidateSceneID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	for _, id := range []string{"", "scene-1", "6ba7b810"} {
		err := ValidateSceneID(id)
		if err == nil {
			t.Errorf("ValidateSceneID(%q) = nil, want error", id)
			continue
		}
		if !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateSceneID(%q) code = %v, want %v", id, GetCode(err), ErrCodeInvalidInput)
		}
	}
}

package store

import (
	"errors"
	"testing"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		in      string
		want    Field
		wantErr bool
	}{
		{"description", FieldDescription, false},
		{"Title", FieldTitle, false},
		{" title ", FieldTitle, false},
		{"salary", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseField(tt.in)
		if tt.wantErr {
			if !errors.Is(err, internalerr.ErrInvalidInput) {
				t.Errorf("ParseField(%q): expected ErrInvalidInput, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseField(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestJobText(t *testing.T) {
	j := Job{Title: "Engineer", Description: "Build things."}
	if j.Text(FieldTitle) != "Engineer" {
		t.Error("title field mismatch")
	}
	if j.Text(FieldDescription) != "Build things." {
		t.Error("description field mismatch")
	}
}

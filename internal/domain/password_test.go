package domain_test

import (
	"strings"
	"testing"

	"github.com/wayfarerhq/tours-api/internal/domain"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		password  string
		wantError bool
	}{
		{name: "valid", password: "pass1234", wantError: false},
		{name: "minimum length", password: "12345678", wantError: false},
		{name: "too short", password: "1234567", wantError: true},
		{name: "empty", password: "", wantError: true},
		{name: "very long", password: strings.Repeat("a", 129), wantError: true},
		{name: "at maximum", password: strings.Repeat("a", 128), wantError: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := domain.ValidatePassword(tc.password)
			if tc.wantError && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantError && err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
		})
	}
}

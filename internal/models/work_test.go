package models

import (
	"errors"
	"testing"

	"github.com/desertthunder/mediaranker/internal/shared"
)

func TestParseCategory(t *testing.T) {
	t.Run("Known Categories", func(t *testing.T) {
		for _, want := range Categories() {
			got, err := ParseCategory(string(want))
			if err != nil {
				t.Errorf("ParseCategory(%q) failed: %v", want, err)
			}
			if got != want {
				t.Errorf("ParseCategory(%q) = %q", want, got)
			}
		}
	})

	t.Run("Rejects Near Matches", func(t *testing.T) {
		for _, input := range []string{"", "  ", "ALBUM", "Movie", " book ", "book\n", "albums", "podcast"} {
			_, err := ParseCategory(input)
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("ParseCategory(%q): expected ErrInvalidInput, got %v", input, err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != "category" {
				t.Errorf("ParseCategory(%q): expected category validation error, got %v", input, err)
			}
		}
	})
}

func TestWorkValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		if err := NewWork("Arrival", CategoryMovie).Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Unnormalized Category", func(t *testing.T) {
		if err := NewWork("Arrival", Category("Movie")).Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Blank Title", func(t *testing.T) {
		if err := NewWork("   ", CategoryBook).Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

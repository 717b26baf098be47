package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	anonymous := Anonymous
	authenticated := Identity{Authenticated: true, UserID: 7}
	staff := Identity{Authenticated: true, UserID: 1, Staff: true}

	tests := []struct {
		name       string
		identity   Identity
		capability Capability
		want       bool
	}{
		{"anonymous can read", anonymous, CapReadCatalog, true},
		{"authenticated can read", authenticated, CapReadCatalog, true},
		{"staff can read", staff, CapReadCatalog, true},

		{"anonymous cannot create movie", anonymous, CapCreateMovie, false},
		{"authenticated cannot create movie", authenticated, CapCreateMovie, false},
		{"staff can create movie", staff, CapCreateMovie, true},

		{"anonymous cannot create artist", anonymous, CapCreateArtist, false},
		{"authenticated cannot create artist", authenticated, CapCreateArtist, false},
		{"staff can create artist", staff, CapCreateArtist, true},

		{"anonymous cannot rate", anonymous, CapSubmitRating, false},
		{"authenticated can rate", authenticated, CapSubmitRating, true},
		{"staff can rate", staff, CapSubmitRating, true},

		{"anonymous cannot manage ratings", anonymous, CapManageOwnRatings, false},
		{"authenticated can manage own ratings", authenticated, CapManageOwnRatings, true},

		{"unknown capability denied for staff", staff, Capability("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.identity, tt.capability))
		})
	}
}

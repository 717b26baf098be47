// Package policy defines the capability table that gates every request.
// It is a pure mapping from caller identity to allowed capabilities,
// independent of any HTTP framework; the server adapts it per request.
package policy

// Capability is an atomic permission evaluated against caller identity.
type Capability string

const (
	// CapReadCatalog covers reading movie, artist, and genre data.
	CapReadCatalog Capability = "catalog:read"

	// CapCreateMovie covers movie creation including genre/director/actor
	// assignment.
	CapCreateMovie Capability = "movie:create"

	// CapCreateArtist covers direct artist creation.
	CapCreateArtist Capability = "artist:create"

	// CapSubmitRating covers submitting a rating under the caller's own
	// identity.
	CapSubmitRating Capability = "rating:submit"

	// CapManageOwnRatings covers viewing and editing the caller's own
	// rating rows.
	CapManageOwnRatings Capability = "rating:manage_own"
)

// Identity describes the caller as established by authentication.
// The zero value is an anonymous caller.
type Identity struct {
	Authenticated bool
	UserID        uint
	Staff         bool
}

// Anonymous is the identity of an unauthenticated caller.
var Anonymous = Identity{}

// Allow reports whether the identity holds the capability. Each request is
// evaluated independently; there is no state beyond the identity itself.
func Allow(id Identity, cap Capability) bool {
	switch cap {
	case CapReadCatalog:
		return true
	case CapCreateMovie, CapCreateArtist:
		return id.Authenticated && id.Staff
	case CapSubmitRating, CapManageOwnRatings:
		return id.Authenticated
	default:
		return false
	}
}

package tenant

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ID names a tenant's isolated storage root. It is always safe to use as a
// single path element.
type ID string

// Demo is the shared root for unauthenticated access.
const Demo ID = "demo"

const hashLen = 4 // bytes, rendered as 8 hex chars

// Resolve maps a verified identity (an email address) to a tenant root.
// An empty or malformed identity resolves to Demo; it never fails.
//
// The slug is the sanitized local part followed by a short BLAKE2b digest
// of the full lower-cased address, so two addresses sharing a local part
// on different domains still get distinct roots.
func Resolve(identity string) ID {
	email := strings.ToLower(strings.TrimSpace(identity))
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return Demo
	}

	slug := sanitize(local)
	if strings.Trim(slug, "._-") == "" {
		return Demo
	}

	sum := blake2b.Sum256([]byte(email))
	return ID(slug + "." + hex.EncodeToString(sum[:hashLen]))
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// IsDemo reports whether id is the shared unauthenticated root.
func (id ID) IsDemo() bool { return id == Demo || id == "" }

// sanitize keeps [a-z0-9_.-] and maps every other rune to '_'. Leading dots
// are dropped so the slug can never be "." or "..".
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

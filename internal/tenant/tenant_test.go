package tenant_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosuda/cabinet/internal/tenant"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

func TestResolve_Demo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		identity string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"no at sign", "marie.dupont"},
		{"empty local part", "@example.com"},
		{"empty domain", "marie@"},
		{"two at signs", "marie@a@b.fr"},
		{"only dots", "..@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tenant.Demo, tenant.Resolve(tt.identity))
		})
	}
}

func TestResolve_Slug(t *testing.T) {
	t.Parallel()

	got := tenant.Resolve("Marie.Dupont+cabinet@Example.com")

	assert.True(t, strings.HasPrefix(string(got), "marie.dupont_cabinet."), "got %q", got)
	assert.Regexp(t, slugPattern, string(got))
	assert.False(t, got.IsDemo())
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	a := tenant.Resolve("marie@example.com")
	b := tenant.Resolve("  MARIE@example.com ")
	assert.Equal(t, a, b)
}

func TestResolve_SameLocalPartDifferentDomain(t *testing.T) {
	t.Parallel()

	a := tenant.Resolve("marie@cabinet-a.fr")
	b := tenant.Resolve("marie@cabinet-b.fr")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, tenant.Demo, a)
}

func TestResolve_NoPathTraversal(t *testing.T) {
	t.Parallel()

	for _, identity := range []string{"../../etc@evil.com", "a/b@evil.com", `a\b@evil.com`, ".hidden@x.fr"} {
		got := tenant.Resolve(identity)
		assert.NotContains(t, string(got), "/")
		assert.NotContains(t, string(got), `\`)
		assert.False(t, strings.HasPrefix(string(got), "."), "got %q", got)
		assert.Regexp(t, slugPattern, string(got))
	}
}

func TestID_IsDemo(t *testing.T) {
	t.Parallel()

	assert.True(t, tenant.Demo.IsDemo())
	assert.True(t, tenant.ID("").IsDemo())
	assert.False(t, tenant.ID("marie.0a1b2c3d").IsDemo())
	assert.Equal(t, "demo", tenant.Demo.String())
}

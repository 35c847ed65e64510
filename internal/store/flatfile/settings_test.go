package flatfile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/cabinet/internal/domain"
)

func TestSettingsStore_Read_WritesDefaults(t *testing.T) {
	t.Parallel()

	s, dir := newStore(t)

	got, err := s.Settings().Read(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)

	_, err = os.Stat(filepath.Join(dir, string(testTenant), "settings.json"))
	assert.NoError(t, err)
}

func TestSettingsStore_Read_MergesOverDefaults(t *testing.T) {
	t.Parallel()

	s, dir := newStore(t)

	path := filepath.Join(dir, string(testTenant), "settings.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	// An older file: no version, no calendar group, partial legal group.
	old := `{"manager":{"nom":"Durand"},"legal":{"delaiPaiementJours":15},"tvaRate":20}`
	require.NoError(t, os.WriteFile(path, []byte(old), 0o600))

	got, err := s.Settings().Read(context.Background(), testTenant)
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	assert.Equal(t, domain.SettingsVersion, got.Version)
	assert.Equal(t, "Durand", got.Manager.Nom)
	assert.Equal(t, defaults.Manager.Titre, got.Manager.Titre)
	assert.Equal(t, 15, got.Legal.DelaiPaiementJours)
	assert.Equal(t, defaults.Legal.MentionTVA, got.Legal.MentionTVA)
	assert.InDelta(t, 20.0, got.TVARate, 0.0001)
	assert.Equal(t, defaults.Calendar, got.Calendar)
}

func TestSettingsStore_Read_CorruptFile(t *testing.T) {
	t.Parallel()

	s, dir := newStore(t)

	path := filepath.Join(dir, string(testTenant), "settings.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	got, err := s.Settings().Read(context.Background(), testTenant)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)
}

func TestSettingsStore_Write(t *testing.T) {
	t.Parallel()

	s, dir := newStore(t)
	ctx := context.Background()

	_, err := s.Settings().Write(ctx, testTenant, []byte(`{"manager":{"nom":"Durand","siret":"123"}}`))
	require.NoError(t, err)

	got, err := s.Settings().Write(ctx, testTenant, []byte(`{
		"manager":{"prenom":"Anne"},
		"calendar":{"id":"cabinet@group.calendar.google.com"},
		"oauth":{"email":"anne@example.com","accessToken":"ya29.secret","refresh_token":"1//x"},
		"apiKey":"re_123",
		"password":"hunter2"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Durand", got.Manager.Nom, "unspecified fields keep their stored value")
	assert.Equal(t, "123", got.Manager.Siret)
	assert.Equal(t, "Anne", got.Manager.Prenom)
	assert.Equal(t, "cabinet@group.calendar.google.com", got.CalendarID())
	assert.True(t, got.Calendar.Enabled)
	assert.Empty(t, got.OAuth.Email)

	raw, err := os.ReadFile(filepath.Join(dir, string(testTenant), "settings.json"))
	require.NoError(t, err)
	for _, secret := range []string{"ya29.secret", "1//x", "re_123", "hunter2", "accessToken", "refresh_token"} {
		assert.NotContains(t, string(raw), secret)
	}

	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.InDelta(t, float64(domain.SettingsVersion), onDisk["version"], 0.0001)
}

func TestSettingsStore_Write_IgnoresOAuthGroup(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	ctx := context.Background()

	connected := domain.DefaultSettings()
	connected.OAuth = domain.OAuthSummary{Connected: true, Email: "marie@example.com", Scopes: []string{"calendar"}}
	require.NoError(t, s.Settings().Save(ctx, testTenant, connected))

	tests := []struct {
		name  string
		patch string
	}{
		{"connect", `{"oauth":{"connected":true,"email":"someone@else.fr"}}`},
		{"disconnect", `{"oauth":{"connected":false,"email":""}}`},
		{"mixed case key", `{"OAuth":{"email":"someone@else.fr","scopes":["gmail"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Settings().Write(ctx, testTenant, []byte(tt.patch))
			require.NoError(t, err)
			assert.Equal(t, connected.OAuth, got.OAuth)
		})
	}

	fresh, _ := newStore(t)
	got, err := fresh.Settings().Write(ctx, testTenant, []byte(`{"oauth":{"connected":true,"email":"someone@else.fr"}}`))
	require.NoError(t, err)
	assert.False(t, got.OAuth.Connected)
	assert.Empty(t, got.OAuth.Email)
}

func TestSettingsStore_Write_Invalid(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		patch string
	}{
		{"not json", `nope`},
		{"wrong type", `{"tvaRate":"vingt"}`},
		{"rate out of range", `{"tvaRate":120}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := s.Settings().Write(ctx, testTenant, []byte(tt.patch))
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

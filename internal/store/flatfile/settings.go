package flatfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

const settingsFile = "settings.json"

// secretMarkers are substrings of keys that are never persisted.
var secretMarkers = []string{"token", "secret", "password", "apikey", "api_key", "refresh"}

type SettingsStore struct {
	root *Root
}

func NewSettingsStore(root *Root) *SettingsStore {
	return &SettingsStore{root: root}
}

// Read returns the stored settings decoded over the defaults, so groups and
// fields missing from older files come back with their default values. A
// missing file is created with the defaults.
func (s *SettingsStore) Read(ctx context.Context, t tenant.ID) (domain.Settings, error) {
	if err := ctx.Err(); err != nil {
		return domain.Settings{}, err
	}

	path := s.root.Path(t, settingsFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		defaults := domain.DefaultSettings()
		if err := s.Save(ctx, t, defaults); err != nil {
			return domain.Settings{}, fmt.Errorf("settingsStore.Read: %w", err)
		}
		return defaults, nil
	}
	if err != nil {
		log.Error().Err(err).Str("tenant", t.String()).Msg("settings: read failed, using defaults")
		return domain.DefaultSettings(), nil
	}

	merged, err := mergeSettings(domain.DefaultSettings(), data)
	if err != nil {
		log.Error().Err(err).Str("tenant", t.String()).Msg("settings: corrupt file, using defaults")
		return domain.DefaultSettings(), nil
	}
	return merged, nil
}

// Write applies a JSON patch over the current settings. Secret-like keys
// and the login-owned oauth group are dropped from the patch before
// anything is merged.
func (s *SettingsStore) Write(ctx context.Context, t tenant.ID, patch []byte) (domain.Settings, error) {
	var raw map[string]any
	if err := json.Unmarshal(patch, &raw); err != nil {
		return domain.Settings{}, fmt.Errorf("settingsStore.Write: %v: %w", err, domain.ErrInvalidInput)
	}
	for k := range raw {
		if isReadOnlyKey(k) {
			delete(raw, k)
		}
	}
	clean, err := json.Marshal(stripSecrets(raw))
	if err != nil {
		return domain.Settings{}, fmt.Errorf("settingsStore.Write: %w", err)
	}

	current, err := s.Read(ctx, t)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("settingsStore.Write: %w", err)
	}
	merged, err := mergeSettings(current, clean)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("settingsStore.Write: %v: %w", err, domain.ErrInvalidInput)
	}
	if merged.TVARate < 0 || merged.TVARate > 100 {
		return domain.Settings{}, fmt.Errorf("settingsStore.Write: tvaRate must be between 0 and 100: %w", domain.ErrInvalidInput)
	}

	if err := s.Save(ctx, t, merged); err != nil {
		return domain.Settings{}, fmt.Errorf("settingsStore.Write: %w", err)
	}
	return merged, nil
}

// Save replaces the stored document.
func (s *SettingsStore) Save(ctx context.Context, t tenant.ID, settings domain.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	settings.Version = domain.SettingsVersion
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("settingsStore.Save: %w", err)
	}
	if err := WriteFileAtomic(s.root.Path(t, settingsFile), data); err != nil {
		log.Error().Err(err).Str("tenant", t.String()).Msg("settings: write failed")
		return fmt.Errorf("settingsStore.Save: %w", err)
	}
	return nil
}

// mergeSettings decodes data over base. Nested groups are merged field by
// field; fields absent from data keep the base value.
func mergeSettings(base domain.Settings, data []byte) (domain.Settings, error) {
	if err := json.Unmarshal(data, &base); err != nil {
		return domain.Settings{}, err
	}
	base.Version = domain.SettingsVersion
	return base, nil
}

// readOnlyKeys are top-level groups a patch never sets. json matches keys
// case-insensitively, so neither does this.
var readOnlyKeys = []string{"oauth", "version"}

func isReadOnlyKey(key string) bool {
	for _, k := range readOnlyKeys {
		if strings.EqualFold(key, k) {
			return true
		}
	}
	return false
}

func stripSecrets(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isSecretKey(k) {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			v = stripSecrets(nested)
		}
		out[k] = v
	}
	return out
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	for _, marker := range secretMarkers {
		if strings.Contains(k, marker) {
			return true
		}
	}
	return false
}

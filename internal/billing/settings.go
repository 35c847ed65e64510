package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

func (s *Service) Settings(ctx context.Context, t tenant.ID) (domain.Settings, error) {
	st, err := s.settings.Read(ctx, t)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("billing.Settings: %w", err)
	}
	return st, nil
}

// UpdateSettings merges a JSON patch over the stored settings. Secret-like
// keys are dropped by the store.
func (s *Service) UpdateSettings(ctx context.Context, t tenant.ID, patch []byte) (domain.Settings, error) {
	defer s.locker.Lock(t)()

	st, err := s.settings.Write(ctx, t, patch)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("billing.UpdateSettings: %w", err)
	}
	return st, nil
}

// RecordOAuth stores the summary of a freshly connected Google account.
func (s *Service) RecordOAuth(ctx context.Context, t tenant.ID, email, name string, scopes []string) error {
	defer s.locker.Lock(t)()

	st, err := s.settings.Read(ctx, t)
	if err != nil {
		return fmt.Errorf("billing.RecordOAuth: %w", err)
	}
	at := s.now().UTC().Truncate(time.Second)
	st.OAuth = domain.OAuthSummary{
		Connected:   true,
		Email:       email,
		DisplayName: name,
		Scopes:      append([]string(nil), scopes...),
		ConnectedAt: &at,
	}
	if err := s.settings.Save(ctx, t, st); err != nil {
		return fmt.Errorf("billing.RecordOAuth: %w", err)
	}
	return nil
}

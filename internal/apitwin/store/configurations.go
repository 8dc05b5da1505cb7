package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

func (s *Store) Configurations(_ context.Context, userID, wsID string) ([]dto.EmailConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.roleLocked(userID, wsID); err != nil {
		return nil, err
	}
	return s.configsOfLocked(wsID), nil
}

func (s *Store) configsOfLocked(wsID string) []dto.EmailConfiguration {
	out := []dto.EmailConfiguration{}
	for _, c := range s.configs {
		if c.WorkspaceID == wsID {
			out = append(out, c.EmailConfiguration)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAtUtc.Equal(out[j].CreatedAtUtc) {
			return out[i].CreatedAtUtc.Before(out[j].CreatedAtUtc)
		}
		return out[i].EmailConfigurationID < out[j].EmailConfigurationID
	})
	return out
}

func (s *Store) configLocked(wsID, id string) (*configRecord, error) {
	c, ok := s.configs[id]
	if !ok || c.WorkspaceID != wsID {
		return nil, ErrConfigurationNotFound
	}
	return c, nil
}

func (s *Store) Configuration(_ context.Context, userID, wsID, id string) (dto.EmailConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.roleLocked(userID, wsID); err != nil {
		return dto.EmailConfiguration{}, err
	}
	c, err := s.configLocked(wsID, id)
	if err != nil {
		return dto.EmailConfiguration{}, err
	}
	return c.EmailConfiguration, nil
}

func (s *Store) CreateConfiguration(_ context.Context, userID, wsID string, cmd dto.CreateEmailConfigurationCommand) (dto.CreateEmailConfigurationResponse, error) {
	if err := validation.CreateEmailConfiguration(cmd).Err(); err != nil {
		return dto.CreateEmailConfigurationResponse{}, err
	}
	sealed, err := s.box.Seal(cmd.Password)
	if err != nil {
		return dto.CreateEmailConfigurationResponse{}, fmt.Errorf("store: sellar password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireLocked(userID, wsID, dto.RoleMember); err != nil {
		return dto.CreateEmailConfigurationResponse{}, err
	}
	rec := &configRecord{
		EmailConfiguration: dto.EmailConfiguration{
			EmailConfigurationID: s.newID(),
			WorkspaceID:          wsID,
			SmtpHost:             strings.TrimSpace(cmd.SmtpHost),
			SmtpPort:             cmd.SmtpPort,
			UseSsl:               cmd.UseSsl,
			Username:             cmd.Username,
			FromEmail:            strings.TrimSpace(cmd.FromEmail),
			DisplayName:          cmd.DisplayName,
			CreatedAtUtc:         s.clock(),
		},
		password: sealed,
	}
	s.configs[rec.EmailConfigurationID] = rec
	return dto.CreateEmailConfigurationResponse{
		EmailConfigurationID: rec.EmailConfigurationID,
		Success:              true,
		Message:              "Email configuration created successfully",
	}, nil
}

// UpdateConfiguration: password vacío conserva la credencial guardada.
func (s *Store) UpdateConfiguration(_ context.Context, userID, wsID, id string, cmd dto.UpdateEmailConfigurationCommand) error {
	if cmd.EmailConfigurationID != "" && cmd.EmailConfigurationID != id {
		fe := validation.FieldErrors{}
		fe.Add("emailConfigurationId", "Route id and body id do not match")
		return fe
	}
	if err := validation.UpdateEmailConfiguration(cmd).Err(); err != nil {
		return err
	}
	sealed, err := s.box.Seal(cmd.Password)
	if err != nil {
		return fmt.Errorf("store: sellar password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireLocked(userID, wsID, dto.RoleMember); err != nil {
		return err
	}
	c, err := s.configLocked(wsID, id)
	if err != nil {
		return err
	}
	c.SmtpHost = strings.TrimSpace(cmd.SmtpHost)
	c.SmtpPort = cmd.SmtpPort
	c.UseSsl = cmd.UseSsl
	c.Username = cmd.Username
	c.FromEmail = strings.TrimSpace(cmd.FromEmail)
	c.DisplayName = cmd.DisplayName
	if sealed != "" {
		c.password = sealed
	}
	return nil
}

func (s *Store) DeleteConfiguration(_ context.Context, userID, wsID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireLocked(userID, wsID, dto.RoleMember); err != nil {
		return err
	}
	if _, err := s.configLocked(wsID, id); err != nil {
		return err
	}
	delete(s.configs, id)
	return nil
}

// Credential devuelve la password guardada (solo para verificación en tests y
// para el envío simulado; nunca se expone por HTTP).
func (s *Store) Credential(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.configs[id]
	if !ok {
		return "", false
	}
	pw, err := s.box.Open(c.password)
	if err != nil {
		return "", false
	}
	return pw, true
}

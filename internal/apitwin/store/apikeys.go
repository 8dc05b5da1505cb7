package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	tokens "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/security/token"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// Las keys se indexan por prefix; el valor completo se guarda solo como hash
// bcrypt.
func keyPrefix(plain string) (string, error) {
	prefix, err := tokens.APIKeyPrefix(plain)
	if err != nil {
		return "", ErrInvalidAPIKey
	}
	return prefix, nil
}

func (s *Store) hashKey(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
}

// issueKeyLocked crea la key; devuelve la plain (única vez que existe).
func (s *Store) issueKeyLocked(wsID, userID, memberID, name string) (*apiKeyRecord, string, error) {
	plain, prefix, err := tokens.NewAPIKey()
	if err != nil {
		return nil, "", err
	}
	h, err := s.hashKey(plain)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(name) == "" {
		name = "API Key"
	}
	rec := &apiKeyRecord{
		WorkspaceApiKey: dto.WorkspaceApiKey{
			ID:              s.newID(),
			WorkspaceUserID: memberID,
			Name:            name,
			IsActive:        true,
		},
		workspaceID: wsID,
		userID:      userID,
		prefix:      prefix,
		hash:        h,
	}
	s.apiKeys[rec.ID] = rec
	return rec, plain, nil
}

// CreateAPIKey: el propio usuario o un Admin+ pueden emitir keys para target.
func (s *Store) CreateAPIKey(_ context.Context, userID, wsID, targetUserID, name string) (dto.CreateApiKeyResponse, error) {
	if err := validation.APIKeyName(name).Err(); err != nil {
		return dto.CreateApiKeyResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.keyAccessLocked(userID, wsID, targetUserID); err != nil {
		return dto.CreateApiKeyResponse{}, err
	}
	m := s.members[wsID][targetUserID]
	rec, plain, err := s.issueKeyLocked(wsID, targetUserID, m.ID, name)
	if err != nil {
		return dto.CreateApiKeyResponse{}, err
	}
	return dto.CreateApiKeyResponse{
		ApiKeyID: rec.ID,
		PlainKey: plain,
		Success:  true,
		Message:  "API key created. Copy it now: it will not be shown again.",
	}, nil
}

func (s *Store) APIKeys(_ context.Context, userID, wsID, targetUserID string) ([]dto.WorkspaceApiKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.keyAccessLocked(userID, wsID, targetUserID); err != nil {
		return nil, err
	}
	out := []dto.WorkspaceApiKey{}
	for _, k := range s.apiKeys {
		if k.workspaceID == wsID && k.userID == targetUserID {
			out = append(out, k.WorkspaceApiKey)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// RevokeAPIKey desactiva la key; sigue listada con isActive=false.
func (s *Store) RevokeAPIKey(_ context.Context, userID, wsID, targetUserID, keyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.keyAccessLocked(userID, wsID, targetUserID); err != nil {
		return err
	}
	k, ok := s.apiKeys[keyID]
	if !ok || k.workspaceID != wsID || k.userID != targetUserID {
		return ErrAPIKeyNotFound
	}
	k.IsActive = false
	return nil
}

func (s *Store) keyAccessLocked(userID, wsID, targetUserID string) error {
	role, err := s.roleLocked(userID, wsID)
	if err != nil {
		return err
	}
	if userID != targetUserID && role > dto.RoleAdmin {
		return ErrForbidden
	}
	if m, ok := s.members[wsID][targetUserID]; !ok || m.IsDeleted {
		return ErrMemberNotFound
	}
	return nil
}

// ResolveAPIKey valida una key plana y devuelve su dueño. Actualiza LastUsedAt.
func (s *Store) ResolveAPIKey(_ context.Context, plain string) (userID, workspaceID string, err error) {
	prefix, err := keyPrefix(plain)
	if err != nil {
		return "", "", err
	}

	s.mu.RLock()
	var cand *apiKeyRecord
	for _, k := range s.apiKeys {
		if k.prefix == prefix {
			cand = k
			break
		}
	}
	var hash []byte
	if cand != nil {
		hash = cand.hash
	}
	s.mu.RUnlock()

	if cand == nil {
		return "", "", ErrInvalidAPIKey
	}
	// bcrypt fuera del lock: es deliberadamente lento.
	if err := bcrypt.CompareHashAndPassword(hash, []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", "", ErrInvalidAPIKey
		}
		return "", "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !cand.IsActive {
		return "", "", ErrInvalidAPIKey
	}
	if _, err := s.roleLocked(cand.userID, cand.workspaceID); err != nil {
		return "", "", ErrInvalidAPIKey
	}
	now := s.clock()
	cand.LastUsedAt = &now
	return cand.userID, cand.workspaceID, nil
}

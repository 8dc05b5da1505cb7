package store

import (
	"context"
	"sort"
	"strings"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// Workspaces lista los workspaces donde userID es miembro activo.
func (s *Store) Workspaces(_ context.Context, userID string) []dto.Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []dto.Workspace{}
	for id, w := range s.workspaces {
		if m, ok := s.members[id][userID]; ok && !m.IsDeleted {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAtUtc.Equal(out[j].CreatedAtUtc) {
			return out[i].CreatedAtUtc.Before(out[j].CreatedAtUtc)
		}
		return out[i].WorkspaceID < out[j].WorkspaceID
	})
	return out
}

func (s *Store) Workspace(_ context.Context, userID, wsID string) (dto.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.roleLocked(userID, wsID); err != nil {
		return dto.Workspace{}, err
	}
	return *s.workspaces[wsID], nil
}

func (s *Store) domainTakenLocked(domain, exceptID string) bool {
	if domain == "" {
		return false
	}
	for id, w := range s.workspaces {
		if id != exceptID && strings.EqualFold(w.Domain, domain) {
			return true
		}
	}
	return false
}

// CreateWorkspace crea el workspace, hace Owner al creador y emite su primera API key.
func (s *Store) CreateWorkspace(_ context.Context, userID string, cmd dto.CreateWorkspaceCommand) (dto.CreateWorkspaceResponse, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Domain = strings.ToLower(strings.TrimSpace(cmd.Domain))
	if err := validation.Workspace(cmd.Name, cmd.Domain).Err(); err != nil {
		return dto.CreateWorkspaceResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.domainTakenLocked(cmd.Domain, "") {
		return dto.CreateWorkspaceResponse{}, ErrConflict
	}

	s.ensureUserLocked(userID, "")
	now := s.clock()
	ws := &dto.Workspace{
		WorkspaceID:  s.newID(),
		Name:         cmd.Name,
		Domain:       cmd.Domain,
		IsActive:     true,
		CreatedAtUtc: now,
	}
	s.workspaces[ws.WorkspaceID] = ws
	owner := &dto.WorkspaceMember{
		ID:          s.newID(),
		UserID:      userID,
		WorkspaceID: ws.WorkspaceID,
		Role:        dto.RoleOwner,
		CreatedAt:   now,
	}
	s.members[ws.WorkspaceID] = map[string]*dto.WorkspaceMember{userID: owner}

	_, plain, err := s.issueKeyLocked(ws.WorkspaceID, userID, owner.ID, "Default")
	if err != nil {
		return dto.CreateWorkspaceResponse{}, err
	}
	return dto.CreateWorkspaceResponse{
		WorkspaceID: ws.WorkspaceID,
		Name:        ws.Name,
		Domain:      ws.Domain,
		ApiKey:      plain,
		IsSuccess:   true,
		Message:     "Workspace created successfully",
	}, nil
}

// UpdateWorkspace exige Admin+ y que cmd.ID coincida con la ruta.
func (s *Store) UpdateWorkspace(_ context.Context, userID, wsID string, cmd dto.UpdateWorkspaceCommand) error {
	if cmd.ID != wsID {
		fe := validation.FieldErrors{}
		fe.Add("id", "Route id and body id do not match")
		return fe
	}
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Domain = strings.ToLower(strings.TrimSpace(cmd.Domain))
	if err := validation.Workspace(cmd.Name, cmd.Domain).Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireLocked(userID, wsID, dto.RoleAdmin); err != nil {
		return err
	}
	if s.domainTakenLocked(cmd.Domain, wsID) {
		return ErrConflict
	}
	ws := s.workspaces[wsID]
	ws.Name = cmd.Name
	ws.Domain = cmd.Domain
	ws.IsActive = cmd.IsActive
	return nil
}

// DeleteWorkspace solo Owner; borra en cascada.
func (s *Store) DeleteWorkspace(_ context.Context, userID, wsID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireLocked(userID, wsID, dto.RoleOwner); err != nil {
		return err
	}
	delete(s.workspaces, wsID)
	delete(s.members, wsID)
	for id, c := range s.configs {
		if c.WorkspaceID == wsID {
			delete(s.configs, id)
		}
	}
	for id, e := range s.emails {
		if e.WorkspaceID == wsID {
			delete(s.emails, id)
		}
	}
	for id, k := range s.apiKeys {
		if k.workspaceID == wsID {
			delete(s.apiKeys, id)
		}
	}
	return nil
}

package store

import (
	"context"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

func (s *Store) Members(_ context.Context, userID, wsID string) ([]dto.WorkspaceMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.roleLocked(userID, wsID); err != nil {
		return nil, err
	}
	return s.activeMembersLocked(wsID), nil
}

// AddMember exige Admin+. Solo un Owner puede agregar otro Owner. Un miembro
// borrado se reactiva con el rol nuevo.
func (s *Store) AddMember(_ context.Context, userID, wsID, targetUserID string, role dto.MemberRole) (dto.AddMemberResponse, error) {
	if err := validation.MemberRole(targetUserID, role).Err(); err != nil {
		return dto.AddMemberResponse{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	callerRole, err := s.roleLocked(userID, wsID)
	if err != nil {
		return dto.AddMemberResponse{}, err
	}
	if callerRole > dto.RoleAdmin || role < callerRole {
		return dto.AddMemberResponse{}, ErrForbidden
	}

	s.ensureUserLocked(targetUserID, "")
	if m, ok := s.members[wsID][targetUserID]; ok {
		if !m.IsDeleted {
			return dto.AddMemberResponse{}, ErrConflict
		}
		m.IsDeleted = false
		m.Role = role
		return dto.AddMemberResponse{MemberID: m.ID, IsSuccess: true, Message: "Member added successfully"}, nil
	}
	m := &dto.WorkspaceMember{
		ID:          s.newID(),
		UserID:      targetUserID,
		WorkspaceID: wsID,
		Role:        role,
		CreatedAt:   s.clock(),
	}
	s.members[wsID][targetUserID] = m
	return dto.AddMemberResponse{MemberID: m.ID, IsSuccess: true, Message: "Member added successfully"}, nil
}

// RemoveMember es soft delete. El último Owner no se puede quitar. Un usuario
// siempre puede salir de un workspace por su cuenta.
func (s *Store) RemoveMember(_ context.Context, userID, wsID, targetUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	callerRole, err := s.roleLocked(userID, wsID)
	if err != nil {
		return err
	}
	if userID != targetUserID && callerRole > dto.RoleAdmin {
		return ErrForbidden
	}
	m, ok := s.members[wsID][targetUserID]
	if !ok || m.IsDeleted {
		return ErrMemberNotFound
	}
	if m.Role < callerRole {
		return ErrForbidden
	}
	if m.Role == dto.RoleOwner && s.ownersLocked(wsID) == 1 {
		return ErrConflict
	}
	m.IsDeleted = true
	for _, k := range s.apiKeys {
		if k.workspaceID == wsID && k.userID == targetUserID {
			k.IsActive = false
		}
	}
	return nil
}

func (s *Store) UpdateMemberRole(_ context.Context, userID, wsID, targetUserID string, role dto.MemberRole) error {
	if err := validation.MemberRole(targetUserID, role).Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	callerRole, err := s.roleLocked(userID, wsID)
	if err != nil {
		return err
	}
	if callerRole > dto.RoleAdmin || role < callerRole {
		return ErrForbidden
	}
	m, ok := s.members[wsID][targetUserID]
	if !ok || m.IsDeleted {
		return ErrMemberNotFound
	}
	if m.Role < callerRole {
		return ErrForbidden
	}
	if m.Role == dto.RoleOwner && role != dto.RoleOwner && s.ownersLocked(wsID) == 1 {
		return ErrConflict
	}
	m.Role = role
	return nil
}

func (s *Store) ownersLocked(wsID string) int {
	n := 0
	for _, m := range s.members[wsID] {
		if !m.IsDeleted && m.Role == dto.RoleOwner {
			n++
		}
	}
	return n
}

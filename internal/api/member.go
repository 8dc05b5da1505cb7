package api

import (
	"context"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

// MemberAPI no tiene SetAuthToken: toma el token del contexto o del cliente
// con el que se construyó (Services.Scoped).
type MemberAPI struct {
	c *httpclient.Client
}

func NewMemberAPI(base *httpclient.Client) *MemberAPI {
	return &MemberAPI{c: base.Clone()}
}

func membersPath(workspaceID string) string { return workspacePath(workspaceID) + "/members" }

func (a *MemberAPI) GetMembers(ctx context.Context, workspaceID string) ([]dto.WorkspaceMember, error) {
	var out []dto.WorkspaceMember
	if err := a.c.Get(ctx, membersPath(workspaceID), &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *MemberAPI) AddMember(ctx context.Context, workspaceID, userID string, role dto.MemberRole) (*dto.AddMemberResponse, error) {
	var out dto.AddMemberResponse
	cmd := dto.AddMemberCommand{UserID: userID, Role: role}
	if err := a.c.Post(ctx, membersPath(workspaceID), cmd, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *MemberAPI) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	return a.c.Delete(ctx, membersPath(workspaceID)+"/"+seg(userID), nil, nil)
}

func (a *MemberAPI) UpdateMemberRole(ctx context.Context, workspaceID, userID string, role dto.MemberRole) error {
	return a.c.Put(ctx, membersPath(workspaceID)+"/"+seg(userID)+"/role", dto.UpdateMemberRoleCommand{Role: role}, nil, nil)
}

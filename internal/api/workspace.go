package api

import (
	"context"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

type WorkspaceAPI struct{ resource }

func NewWorkspaceAPI(base *httpclient.Client) *WorkspaceAPI {
	return &WorkspaceAPI{newResource(base)}
}

// GetUserWorkspaces lista los workspaces del usuario autenticado.
func (a *WorkspaceAPI) GetUserWorkspaces(ctx context.Context) ([]dto.Workspace, error) {
	var out []dto.Workspace
	if err := a.c.Get(ctx, apiPrefix+"/workspaces", &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *WorkspaceAPI) GetWorkspace(ctx context.Context, workspaceID string) (*dto.Workspace, error) {
	var out dto.Workspace
	if err := a.c.Get(ctx, workspacePath(workspaceID), &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *WorkspaceAPI) CreateWorkspace(ctx context.Context, cmd dto.CreateWorkspaceCommand) (*dto.CreateWorkspaceResponse, error) {
	var out dto.CreateWorkspaceResponse
	if err := a.c.Post(ctx, apiPrefix+"/workspaces", cmd, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateWorkspace fuerza cmd.ID = workspaceID (el API exige que coincidan).
func (a *WorkspaceAPI) UpdateWorkspace(ctx context.Context, workspaceID string, cmd dto.UpdateWorkspaceCommand) error {
	cmd.ID = workspaceID
	return a.c.Put(ctx, workspacePath(workspaceID), cmd, nil, nil)
}

func (a *WorkspaceAPI) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	return a.c.Delete(ctx, workspacePath(workspaceID), nil, nil)
}

func (a *WorkspaceAPI) GetWorkspaceAnalytics(ctx context.Context, workspaceID string, p *dto.AnalyticsParams) (*dto.GetWorkspaceAnalyticsResponse, error) {
	return getAnalytics(ctx, a.c, workspaceID, p)
}

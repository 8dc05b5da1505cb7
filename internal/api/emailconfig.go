package api

import (
	"context"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

type EmailConfigAPI struct{ resource }

func NewEmailConfigAPI(base *httpclient.Client) *EmailConfigAPI {
	return &EmailConfigAPI{newResource(base)}
}

func configsPath(workspaceID string) string {
	return workspacePath(workspaceID) + "/email-configurations"
}

func (a *EmailConfigAPI) GetEmailConfigurations(ctx context.Context, workspaceID string) ([]dto.EmailConfiguration, error) {
	var out []dto.EmailConfiguration
	if err := a.c.Get(ctx, configsPath(workspaceID), &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *EmailConfigAPI) GetEmailConfiguration(ctx context.Context, workspaceID, id string) (*dto.EmailConfiguration, error) {
	var out dto.EmailConfiguration
	if err := a.c.Get(ctx, configsPath(workspaceID)+"/"+seg(id), &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EmailConfigAPI) CreateEmailConfiguration(ctx context.Context, workspaceID string, cmd dto.CreateEmailConfigurationCommand) (*dto.CreateEmailConfigurationResponse, error) {
	cmd.WorkspaceID = workspaceID
	var out dto.CreateEmailConfigurationResponse
	if err := a.c.Post(ctx, configsPath(workspaceID), cmd, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEmailConfiguration: con cmd.Password vacío el campo no se envía y el API
// conserva la credencial guardada.
func (a *EmailConfigAPI) UpdateEmailConfiguration(ctx context.Context, workspaceID, id string, cmd dto.UpdateEmailConfigurationCommand) error {
	cmd.WorkspaceID = workspaceID
	cmd.EmailConfigurationID = id
	return a.c.Put(ctx, configsPath(workspaceID)+"/"+seg(id), cmd, nil, nil)
}

func (a *EmailConfigAPI) DeleteEmailConfiguration(ctx context.Context, workspaceID, id string) error {
	return a.c.Delete(ctx, configsPath(workspaceID)+"/"+seg(id), nil, nil)
}

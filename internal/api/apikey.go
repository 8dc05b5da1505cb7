package api

import (
	"context"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

type APIKeyAPI struct{ resource }

func NewAPIKeyAPI(base *httpclient.Client) *APIKeyAPI {
	return &APIKeyAPI{newResource(base)}
}

func apiKeysPath(workspaceID, userID string) string {
	return workspacePath(workspaceID) + "/users/" + seg(userID) + "/apikeys"
}

// CreateApiKey devuelve PlainKey una única vez; el caller debe mostrarla ya.
func (a *APIKeyAPI) CreateApiKey(ctx context.Context, workspaceID, userID, name string) (*dto.CreateApiKeyResponse, error) {
	var out dto.CreateApiKeyResponse
	if err := a.c.Post(ctx, apiKeysPath(workspaceID, userID), dto.CreateApiKeyCommand{Name: name}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *APIKeyAPI) GetApiKeys(ctx context.Context, workspaceID, userID string) ([]dto.WorkspaceApiKey, error) {
	var out []dto.WorkspaceApiKey
	if err := a.c.Get(ctx, apiKeysPath(workspaceID, userID), &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIKeyAPI) RevokeApiKey(ctx context.Context, workspaceID, userID, apiKeyID string) error {
	return a.c.Delete(ctx, apiKeysPath(workspaceID, userID)+"/"+seg(apiKeyID), nil, nil)
}

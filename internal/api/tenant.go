package api

import (
	"context"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

// TenantAPI es el módulo legacy anterior a workspaces. Lo usa solo el CLI.
type TenantAPI struct{ resource }

func NewTenantAPI(base *httpclient.Client) *TenantAPI {
	return &TenantAPI{newResource(base)}
}

func tenantPath(id string) string { return apiPrefix + "/tenants/" + seg(id) }

func (a *TenantAPI) GetTenants(ctx context.Context) ([]dto.Tenant, error) {
	var out []dto.Tenant
	if err := a.c.Get(ctx, apiPrefix+"/tenants", &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *TenantAPI) GetTenant(ctx context.Context, id string) (*dto.Tenant, error) {
	var out dto.Tenant
	if err := a.c.Get(ctx, tenantPath(id), &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *TenantAPI) CreateTenant(ctx context.Context, cmd dto.CreateTenantCommand) (*dto.CreateTenantResponse, error) {
	var out dto.CreateTenantResponse
	if err := a.c.Post(ctx, apiPrefix+"/tenants", cmd, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *TenantAPI) UpdateTenant(ctx context.Context, id string, cmd dto.UpdateTenantCommand) error {
	cmd.TenantID = id
	return a.c.Put(ctx, tenantPath(id), cmd, nil, nil)
}

func (a *TenantAPI) DeleteTenant(ctx context.Context, id string) error {
	return a.c.Delete(ctx, tenantPath(id), nil, nil)
}

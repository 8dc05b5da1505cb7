package api

import (
	"context"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

// SortOrderParam es la key que espera el backend para el orden del listado.
// Está mal escrita del lado del API; no corregir sin confirmar con backend.
const SortOrderParam = "sortOder"

// APIKeyHeader es el header de autenticación por API key.
const APIKeyHeader = "X-API-KEY"

type EmailAPI struct{ resource }

func NewEmailAPI(base *httpclient.Client) *EmailAPI {
	return &EmailAPI{newResource(base)}
}

// GetEmailsForWorkspace lista emails paginados con filtros.
func (a *EmailAPI) GetEmailsForWorkspace(ctx context.Context, workspaceID string, f dto.EmailFilters) (*dto.PaginatedList[dto.EmailDto], error) {
	var out dto.PaginatedList[dto.EmailDto]
	err := a.c.Get(ctx, workspacePath(workspaceID)+"/emails", &out, &httpclient.RequestOptions{Params: EmailFilterParams(f)})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EmailAPI) GetEmailByIdForWorkspace(ctx context.Context, workspaceID, emailID string) (*dto.EmailDetailsDto, error) {
	var out dto.EmailDetailsDto
	if err := a.c.Get(ctx, workspacePath(workspaceID)+"/emails/"+seg(emailID), &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendEmail encola un email con bearer auth.
func (a *EmailAPI) SendEmail(ctx context.Context, workspaceID string, cmd dto.SendEmailCommand) error {
	cmd.WorkspaceID = workspaceID
	return a.c.Post(ctx, workspacePath(workspaceID)+"/emails/send-email", cmd, nil, nil)
}

// SendEmailWithApiKey usa X-API-KEY en un cliente derivado sin bearer, contra el
// endpoint sin workspace.
func (a *EmailAPI) SendEmailWithApiKey(ctx context.Context, cmd dto.SendEmailWithApiKeyCommand, apiKey string) error {
	keyed := a.c.WithHeaders(map[string]string{APIKeyHeader: apiKey})
	return keyed.Post(ctx, apiPrefix+"/send-email", cmd, nil, nil)
}

// EmailFilterParams traduce los filtros a query params; zero values no se envían.
func EmailFilterParams(f dto.EmailFilters) httpclient.Params {
	p := httpclient.Params{
		"startDate": f.StartDate,
		"endDate":   f.EndDate,
	}
	if f.PageNumber > 0 {
		p["pageNumber"] = f.PageNumber
	}
	if f.PageSize > 0 {
		p["pageSize"] = f.PageSize
	}
	if f.SortOrder != "" {
		p[SortOrderParam] = f.SortOrder
	}
	if f.EmailStatus != "" {
		p["emailStatus"] = string(f.EmailStatus)
	}
	if f.ToEmailContains != "" {
		p["toEmailContains"] = f.ToEmailContains
	}
	if f.SubjectContains != "" {
		p["subjectContains"] = f.SubjectContains
	}
	return p
}

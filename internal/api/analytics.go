package api

import (
	"context"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

type AnalyticsAPI struct{ resource }

func NewAnalyticsAPI(base *httpclient.Client) *AnalyticsAPI {
	return &AnalyticsAPI{newResource(base)}
}

func (a *AnalyticsAPI) GetWorkspaceAnalytics(ctx context.Context, workspaceID string, p *dto.AnalyticsParams) (*dto.GetWorkspaceAnalyticsResponse, error) {
	return getAnalytics(ctx, a.c, workspaceID, p)
}

// GetEmailStatusBreakdown devuelve el desglose por status, completando con
// ceros los status que el API no informó.
func (a *AnalyticsAPI) GetEmailStatusBreakdown(ctx context.Context, workspaceID string, p *dto.AnalyticsParams) ([]dto.StatusCount, error) {
	res, err := a.GetWorkspaceAnalytics(ctx, workspaceID, p)
	if err != nil {
		return nil, err
	}
	return CompleteBreakdown(res.EmailMetrics.StatusBreakdown), nil
}

// GetVolumeSeries devuelve la serie temporal de volumen.
func (a *AnalyticsAPI) GetVolumeSeries(ctx context.Context, workspaceID string, p *dto.AnalyticsParams) ([]dto.VolumeDataPoint, error) {
	res, err := a.GetWorkspaceAnalytics(ctx, workspaceID, p)
	if err != nil {
		return nil, err
	}
	return res.VolumeSeries, nil
}

// CompleteBreakdown ordena según dto.EmailStatuses y agrega los faltantes con 0.
func CompleteBreakdown(in []dto.StatusCount) []dto.StatusCount {
	byStatus := make(map[dto.EmailStatus]dto.StatusCount, len(in))
	for _, sc := range in {
		byStatus[sc.Status] = sc
	}
	out := make([]dto.StatusCount, 0, len(dto.EmailStatuses))
	for _, s := range dto.EmailStatuses {
		sc, ok := byStatus[s]
		if !ok {
			sc = dto.StatusCount{Status: s}
		}
		out = append(out, sc)
	}
	return out
}

func analyticsParams(p *dto.AnalyticsParams) httpclient.Params {
	if p == nil {
		return nil
	}
	params := httpclient.Params{
		"startDate": p.StartDate,
		"endDate":   p.EndDate,
	}
	if p.Granularity != "" {
		params["granularity"] = p.Granularity
	}
	if p.RecentLimit > 0 {
		params["recentLimit"] = p.RecentLimit
	}
	return params
}

func getAnalytics(ctx context.Context, c *httpclient.Client, workspaceID string, p *dto.AnalyticsParams) (*dto.GetWorkspaceAnalyticsResponse, error) {
	var out dto.GetWorkspaceAnalyticsResponse
	err := c.Get(ctx, workspacePath(workspaceID)+"/analytics", &out, &httpclient.RequestOptions{Params: analyticsParams(p)})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

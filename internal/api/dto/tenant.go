package dto

import "time"

// Tenant es el modelo legacy previo a workspaces; el API lo sigue exponiendo
// bajo /api/v1/tenants.
type Tenant struct {
	TenantID     string    `json:"tenantId"`
	Name         string    `json:"name"`
	Domain       string    `json:"domain"`
	IsActive     bool      `json:"isActive"`
	CreatedAtUtc time.Time `json:"createdAtUtc"`
}

type CreateTenantCommand struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type UpdateTenantCommand struct {
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	IsActive bool   `json:"isActive"`
}

type CreateTenantResponse struct {
	TenantID  string `json:"tenantId"`
	ApiKey    string `json:"apiKey"`
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
}

package dto

import "time"

// Workspace es la unidad de aislamiento: configuraciones, emails, miembros y
// API keys cuelgan de exactamente un workspace.
type Workspace struct {
	WorkspaceID  string    `json:"workspaceId"`
	Name         string    `json:"name"`
	Domain       string    `json:"domain"`
	IsActive     bool      `json:"isActive"` // solo presentación
	CreatedAtUtc time.Time `json:"createdAtUtc"`
}

type CreateWorkspaceCommand struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type UpdateWorkspaceCommand struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	IsActive bool   `json:"isActive"`
}

// CreateWorkspaceResponse trae la API key inicial del workspace (solo acá).
type CreateWorkspaceResponse struct {
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	ApiKey      string `json:"apiKey"`
	IsSuccess   bool   `json:"isSuccess"`
	Message     string `json:"message"`
}

// FindWorkspace devuelve el workspace con id, o nil.
func FindWorkspace(list []Workspace, id string) *Workspace {
	for i := range list {
		if list[i].WorkspaceID == id {
			return &list[i]
		}
	}
	return nil
}

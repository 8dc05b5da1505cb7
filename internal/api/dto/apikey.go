package dto

import "time"

// WorkspaceApiKey es la vista de lectura de una API key; nunca trae el valor.
type WorkspaceApiKey struct {
	ID              string     `json:"id"`
	WorkspaceUserID string     `json:"workspaceUserId"`
	Name            string     `json:"name"`
	LastUsedAt      *time.Time `json:"lastUsedAt"`
	IsActive        bool       `json:"isActive"`
}

type CreateApiKeyCommand struct {
	Name string `json:"name,omitempty"`
}

// CreateApiKeyResponse es la única respuesta que trae PlainKey.
type CreateApiKeyResponse struct {
	ApiKeyID string `json:"apiKeyId"`
	PlainKey string `json:"plainKey"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

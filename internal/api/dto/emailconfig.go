package dto

import "time"

// EmailConfiguration es un set de credenciales SMTP usado como identidad "from".
// El password nunca viaja en lecturas.
type EmailConfiguration struct {
	EmailConfigurationID string    `json:"emailConfigurationId"`
	WorkspaceID          string    `json:"workspaceId,omitempty"`
	TenantID             string    `json:"tenantId,omitempty"` // legacy
	SmtpHost             string    `json:"smtpHost"`
	SmtpPort             int       `json:"smtpPort"`
	UseSsl               bool      `json:"useSsl"`
	Username             string    `json:"username"`
	FromEmail            string    `json:"fromEmail"`
	DisplayName          string    `json:"displayName"`
	CreatedAtUtc         time.Time `json:"createdAtUtc"`
}

// CreateEmailConfigurationCommand requiere password.
type CreateEmailConfigurationCommand struct {
	WorkspaceID string `json:"workspaceId"`
	SmtpHost    string `json:"smtpHost"`
	SmtpPort    int    `json:"smtpPort"`
	UseSsl      bool   `json:"useSsl"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FromEmail   string `json:"fromEmail"`
	DisplayName string `json:"displayName"`
}

// UpdateEmailConfigurationCommand: password vacío = mantener el actual.
type UpdateEmailConfigurationCommand struct {
	EmailConfigurationID string `json:"emailConfigurationId"`
	WorkspaceID          string `json:"workspaceId"`
	SmtpHost             string `json:"smtpHost"`
	SmtpPort             int    `json:"smtpPort"`
	UseSsl               bool   `json:"useSsl"`
	Username             string `json:"username"`
	Password             string `json:"password,omitempty"`
	FromEmail            string `json:"fromEmail"`
	DisplayName          string `json:"displayName"`
}

type CreateEmailConfigurationResponse struct {
	EmailConfigurationID string `json:"emailConfigurationId"`
	Success              bool   `json:"success"`
	Message              string `json:"message"`
}

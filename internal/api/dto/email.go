package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// EmailStatus es una enumeración cerrada; cualquier otro valor es una violación
// de esquema y falla al decodificar.
type EmailStatus string

const (
	StatusQueued    EmailStatus = "Queued"
	StatusSending   EmailStatus = "Sending"
	StatusSent      EmailStatus = "Sent"
	StatusFailed    EmailStatus = "Failed"
	StatusCancelled EmailStatus = "Cancelled"
)

// EmailStatuses en el orden en que los muestra la UI.
var EmailStatuses = []EmailStatus{StatusQueued, StatusSending, StatusSent, StatusFailed, StatusCancelled}

func (s EmailStatus) Valid() bool {
	for _, v := range EmailStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal: Sent, Failed y Cancelled no vuelven a cambiar.
func (s EmailStatus) Terminal() bool {
	return s == StatusSent || s == StatusFailed || s == StatusCancelled
}

// ParseEmailStatus valida un string contra la enumeración.
func ParseEmailStatus(v string) (EmailStatus, error) {
	s := EmailStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("invalid email status %q", v)
	}
	return s, nil
}

func (s *EmailStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("email status: %w", err)
	}
	v, err := ParseEmailStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// EmailDto es la vista de listado de un email encolado/enviado/fallido.
type EmailDto struct {
	ID                   string      `json:"id"`
	WorkspaceID          string      `json:"workspaceId"`
	EmailConfigurationID string      `json:"emailConfigurationId"`
	FromEmail            string      `json:"fromEmail"`
	ToEmail              []string    `json:"toEmail"`
	Subject              string      `json:"subject"`
	Status               EmailStatus `json:"status"`
	AttemptCount         int         `json:"attemptCount"`
	ErrorMessage         string      `json:"errorMessage,omitempty"`
	CreatedAtUtc         time.Time   `json:"createdAtUtc"`
	SentAtUtc            *time.Time  `json:"sentAtUtc"`
}

// EmailDetailsDto agrega cuerpo completo, CC/BCC, respuesta SMTP y el id del job.
type EmailDetailsDto struct {
	EmailDto
	BodyHtml      string   `json:"bodyHtml"`
	BodyPlainText string   `json:"bodyPlainText"`
	CcEmail       []string `json:"ccEmail"`
	BccEmail      []string `json:"bccEmail"`
	IsHtml        bool     `json:"isHtml"`
	SmtpResponse  string   `json:"smtpResponse"`
	JobID         string   `json:"jobId"`
}

// SendEmailCommand: CC/BCC nil viajan como null.
type SendEmailCommand struct {
	WorkspaceID          string   `json:"workspaceId"`
	EmailConfigurationID string   `json:"emailConfigurationId"`
	ToEmail              []string `json:"toEmail"`
	Subject              string   `json:"subject"`
	Body                 string   `json:"body"`
	IsHtml               bool     `json:"isHtml"`
	FromDisplayName      string   `json:"fromDisplayName"`
	CcEmail              []string `json:"ccEmail"`
	BccEmail             []string `json:"bccEmail"`
}

// SendEmailWithApiKeyCommand: el workspace lo resuelve el API a partir de la key.
type SendEmailWithApiKeyCommand struct {
	EmailConfigurationID string   `json:"emailConfigurationId,omitempty"`
	ToEmail              []string `json:"toEmail"`
	Subject              string   `json:"subject"`
	Body                 string   `json:"body"`
	IsHtml               bool     `json:"isHtml"`
	FromDisplayName      string   `json:"fromDisplayName"`
	CcEmail              []string `json:"ccEmail"`
	BccEmail             []string `json:"bccEmail"`
}

// EmailFilters son los filtros del listado. Zero values no se envían.
type EmailFilters struct {
	PageNumber      int
	PageSize        int
	SortOrder       string // "asc" | "desc"
	EmailStatus     EmailStatus
	ToEmailContains string
	SubjectContains string
	StartDate       *time.Time
	EndDate         *time.Time
}

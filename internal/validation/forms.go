package validation

import (
	"strings"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
)

// Workspace valida create/update.
func Workspace(name, domain string) FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(name) == "" {
		fe.Add("name", "Workspace name is required")
	} else if len(name) > 100 {
		fe.Add("name", "Workspace name must be at most 100 characters")
	}
	if d := strings.TrimSpace(domain); d != "" && !ValidDomain(d) {
		fe.Add("domain", "Please enter a valid domain")
	}
	return fe
}

// SMTPSettings son los campos comunes a create/update de configuración.
type SMTPSettings struct {
	SmtpHost    string
	SmtpPort    int
	Username    string
	Password    string
	FromEmail   string
	DisplayName string
}

// EmailConfiguration: password requerido solo al crear; en update vacío = conservar.
func EmailConfiguration(s SMTPSettings, creating bool) FieldErrors {
	fe := FieldErrors{}
	if !ValidHost(s.SmtpHost) {
		fe.Add("smtpHost", "SMTP host is required")
	}
	if !ValidPort(s.SmtpPort) {
		fe.Add("smtpPort", "Port must be between 1 and 65535")
	}
	if strings.TrimSpace(s.Username) == "" {
		fe.Add("username", "Username is required")
	}
	if creating && s.Password == "" {
		fe.Add("password", "Password is required")
	}
	if !ValidEmail(s.FromEmail) {
		fe.Add("fromEmail", "Please enter a valid email address")
	}
	if strings.TrimSpace(s.DisplayName) == "" {
		fe.Add("displayName", "Display name is required")
	}
	return fe
}

func CreateEmailConfiguration(cmd dto.CreateEmailConfigurationCommand) FieldErrors {
	return EmailConfiguration(SMTPSettings{
		SmtpHost: cmd.SmtpHost, SmtpPort: cmd.SmtpPort, Username: cmd.Username,
		Password: cmd.Password, FromEmail: cmd.FromEmail, DisplayName: cmd.DisplayName,
	}, true)
}

func UpdateEmailConfiguration(cmd dto.UpdateEmailConfigurationCommand) FieldErrors {
	return EmailConfiguration(SMTPSettings{
		SmtpHost: cmd.SmtpHost, SmtpPort: cmd.SmtpPort, Username: cmd.Username,
		Password: cmd.Password, FromEmail: cmd.FromEmail, DisplayName: cmd.DisplayName,
	}, false)
}

// Recipients exige al menos un "to" y que todas las direcciones sean válidas.
func Recipients(fe FieldErrors, to, cc, bcc []string) {
	if len(to) == 0 {
		fe.Add("toEmail", "At least one recipient is required")
	}
	for field, list := range map[string][]string{"toEmail": to, "ccEmail": cc, "bccEmail": bcc} {
		for _, a := range list {
			if !ValidEmail(a) {
				fe.Add(field, "Invalid email address: "+a)
				break
			}
		}
	}
}

func SendEmail(cmd dto.SendEmailCommand) FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(cmd.EmailConfigurationID) == "" {
		fe.Add("emailConfigurationId", "Select an email configuration")
	}
	Recipients(fe, cmd.ToEmail, cmd.CcEmail, cmd.BccEmail)
	if strings.TrimSpace(cmd.Subject) == "" {
		fe.Add("subject", "Subject is required")
	}
	return fe
}

func SendEmailWithApiKey(cmd dto.SendEmailWithApiKeyCommand) FieldErrors {
	fe := FieldErrors{}
	Recipients(fe, cmd.ToEmail, cmd.CcEmail, cmd.BccEmail)
	if strings.TrimSpace(cmd.Subject) == "" {
		fe.Add("subject", "Subject is required")
	}
	return fe
}

func APIKeyName(name string) FieldErrors {
	fe := FieldErrors{}
	if len(name) > 100 {
		fe.Add("name", "Name must be at most 100 characters")
	}
	return fe
}

func MemberRole(userID string, role dto.MemberRole) FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(userID) == "" {
		fe.Add("userId", "User id is required")
	}
	if !role.Valid() {
		fe.Add("role", "Invalid role")
	}
	return fe
}

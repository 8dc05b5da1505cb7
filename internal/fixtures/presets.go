package fixtures

import "strings"

// SMTPPreset precarga el formulario de configuración para un proveedor conocido.
type SMTPPreset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SmtpHost     string `json:"smtpHost"`
	SmtpPort     int    `json:"smtpPort"`
	UseSsl       bool   `json:"useSsl"`
	UsernameHint string `json:"usernameHint"`
	Notes        string `json:"notes"`
}

var presets = []SMTPPreset{
	{
		ID:           "gmail",
		Name:         "Gmail",
		SmtpHost:     "smtp.gmail.com",
		SmtpPort:     587,
		UseSsl:       true,
		UsernameHint: "you@gmail.com",
		Notes:        "Requires an app password when 2-step verification is enabled.",
	},
	{
		ID:           "outlook",
		Name:         "Outlook / Microsoft 365",
		SmtpHost:     "smtp.office365.com",
		SmtpPort:     587,
		UseSsl:       true,
		UsernameHint: "you@yourdomain.com",
		Notes:        "SMTP AUTH must be enabled for the mailbox.",
	},
	{
		ID:           "sendgrid",
		Name:         "SendGrid",
		SmtpHost:     "smtp.sendgrid.net",
		SmtpPort:     587,
		UseSsl:       true,
		UsernameHint: "apikey",
		Notes:        "Username is the literal string \"apikey\"; the password is your API key.",
	},
	{
		ID:           "mailgun",
		Name:         "Mailgun",
		SmtpHost:     "smtp.mailgun.org",
		SmtpPort:     587,
		UseSsl:       true,
		UsernameHint: "postmaster@mg.yourdomain.com",
		Notes:        "Use the SMTP credentials of the sending domain.",
	},
	{
		ID:           "ses",
		Name:         "Amazon SES",
		SmtpHost:     "email-smtp.us-east-1.amazonaws.com",
		SmtpPort:     587,
		UseSsl:       true,
		UsernameHint: "AKIA...",
		Notes:        "SMTP credentials are different from IAM access keys. Adjust the region in the host.",
	},
}

// SMTPPresets devuelve una copia de los presets.
func SMTPPresets() []SMTPPreset {
	out := make([]SMTPPreset, len(presets))
	copy(out, presets)
	return out
}

// PresetByID busca por id (sin distinguir mayúsculas).
func PresetByID(id string) (SMTPPreset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.ID, id) {
			return p, true
		}
	}
	return SMTPPreset{}, false
}

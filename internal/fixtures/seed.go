// Package fixtures provee los datos demo del dashboard: un seed determinista
// del store del twin y un Provider en proceso con los mismos contratos que el
// API real.
package fixtures

import (
	"fmt"
	"time"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/apitwin/store"
)

// Usuario y workspaces demo.
const (
	DemoUserID    = "user_demo"
	DemoUserEmail = "demo@emailez.dev"

	AcmeWorkspaceID = "ws_acme"
	SideWorkspaceID = "ws_side"
)

// DemoAPIKey es la key plana del workspace Acme en el seed (solo demo).
const DemoAPIKey = "ek_00000000000000a1.000000000000000000000000000000000000000000000001"

var subjects = []string{
	"Welcome to Acme",
	"Your invoice is ready",
	"Password reset requested",
	"Weekly product digest",
	"Your order has shipped",
	"Action required: verify your email",
	"Meeting notes",
}

var recipients = []string{
	"maria@customer.io",
	"lucas@example.com",
	"sofia@startup.dev",
	"ops@partner.net",
	"billing@acme.io",
	"noreply-test@bounce.test",
}

// Seed arma el estado demo relativo a now: dos workspaces, tres configuraciones,
// miembros con todos los roles y ~60 emails repartidos en los últimos 30 días con
// todos los status.
func Seed(now time.Time) store.State {
	now = now.UTC().Truncate(time.Minute)
	created := now.AddDate(0, -3, 0)

	st := store.State{
		Users: []store.User{
			{ID: DemoUserID, Email: DemoUserEmail},
			{ID: "user_maria", Email: "maria@acme.io"},
			{ID: "user_lucas", Email: "lucas@acme.io"},
			{ID: "user_sofia", Email: "sofia@acme.io"},
		},
		Workspaces: []dto.Workspace{
			{WorkspaceID: AcmeWorkspaceID, Name: "Acme Marketing", Domain: "acme.io", IsActive: true, CreatedAtUtc: created},
			{WorkspaceID: SideWorkspaceID, Name: "Side Project", Domain: "sideproject.dev", IsActive: true, CreatedAtUtc: created.AddDate(0, 1, 0)},
		},
		Members: []dto.WorkspaceMember{
			{ID: "mem_01", UserID: DemoUserID, WorkspaceID: AcmeWorkspaceID, Role: dto.RoleOwner, CreatedAt: created},
			{ID: "mem_02", UserID: "user_maria", WorkspaceID: AcmeWorkspaceID, Role: dto.RoleAdmin, CreatedAt: created.AddDate(0, 0, 2)},
			{ID: "mem_03", UserID: "user_lucas", WorkspaceID: AcmeWorkspaceID, Role: dto.RoleMember, CreatedAt: created.AddDate(0, 0, 5)},
			{ID: "mem_04", UserID: "user_sofia", WorkspaceID: AcmeWorkspaceID, Role: dto.RoleViewer, CreatedAt: created.AddDate(0, 0, 9)},
			{ID: "mem_05", UserID: DemoUserID, WorkspaceID: SideWorkspaceID, Role: dto.RoleOwner, CreatedAt: created.AddDate(0, 1, 0)},
		},
		Configurations: []store.StateConfiguration{
			demoConfig("cfg_gmail", AcmeWorkspaceID, "gmail", "marketing@acme.io", "Acme Marketing", created),
			demoConfig("cfg_sendgrid", AcmeWorkspaceID, "sendgrid", "noreply@acme.io", "Acme", created.AddDate(0, 0, 1)),
			demoConfig("cfg_mailgun", SideWorkspaceID, "mailgun", "hello@sideproject.dev", "Side Project", created.AddDate(0, 1, 0)),
		},
		APIKeys: []store.StateAPIKey{
			{
				WorkspaceApiKey: dto.WorkspaceApiKey{ID: "key_01", WorkspaceUserID: "mem_01", Name: "Default", IsActive: true},
				WorkspaceID:     AcmeWorkspaceID,
				UserID:          DemoUserID,
				PlainKey:        DemoAPIKey,
			},
			{
				WorkspaceApiKey: dto.WorkspaceApiKey{ID: "key_02", WorkspaceUserID: "mem_01", Name: "Old CI", IsActive: false},
				WorkspaceID:     AcmeWorkspaceID,
				UserID:          DemoUserID,
				PlainKey:        "ek_00000000000000a2.000000000000000000000000000000000000000000000002",
			},
		},
	}

	cfgs := []string{"cfg_gmail", "cfg_sendgrid"}
	from := map[string]string{"cfg_gmail": "marketing@acme.io", "cfg_sendgrid": "noreply@acme.io", "cfg_mailgun": "hello@sideproject.dev"}
	for i := 0; i < 60; i++ {
		ws, cfg := AcmeWorkspaceID, cfgs[i%len(cfgs)]
		if i%5 == 4 {
			ws, cfg = SideWorkspaceID, "cfg_mailgun"
		}
		at := now.Add(-time.Duration(i)*11*time.Hour - time.Duration(i%7)*13*time.Minute)
		st.Emails = append(st.Emails, demoEmail(i, ws, cfg, from[cfg], at))
	}
	return st
}

func demoConfig(id, wsID, presetID, fromEmail, display string, at time.Time) store.StateConfiguration {
	p, _ := PresetByID(presetID)
	return store.StateConfiguration{
		EmailConfiguration: dto.EmailConfiguration{
			EmailConfigurationID: id,
			WorkspaceID:          wsID,
			SmtpHost:             p.SmtpHost,
			SmtpPort:             p.SmtpPort,
			UseSsl:               p.UseSsl,
			Username:             p.UsernameHint,
			FromEmail:            fromEmail,
			DisplayName:          display,
			CreatedAtUtc:         at,
		},
		Password: "demo-password",
	}
}

// demoStatus reparte los status de forma fija; la mayoría queda Sent.
func demoStatus(i int) dto.EmailStatus {
	switch {
	case i == 0 || i == 1:
		return dto.StatusQueued
	case i == 2:
		return dto.StatusSending
	case i%9 == 4:
		return dto.StatusFailed
	case i%23 == 11:
		return dto.StatusCancelled
	default:
		return dto.StatusSent
	}
}

func demoEmail(i int, wsID, cfgID, fromEmail string, at time.Time) dto.EmailDetailsDto {
	status := demoStatus(i)
	to := recipients[i%len(recipients)]
	if status != dto.StatusFailed && to == "noreply-test@bounce.test" {
		to = recipients[0]
	}
	e := dto.EmailDetailsDto{
		EmailDto: dto.EmailDto{
			ID:                   fmt.Sprintf("email_%03d", i+1),
			WorkspaceID:          wsID,
			EmailConfigurationID: cfgID,
			FromEmail:            fromEmail,
			ToEmail:              []string{to},
			Subject:              subjects[i%len(subjects)],
			Status:               status,
			CreatedAtUtc:         at,
		},
		BodyHtml: fmt.Sprintf("<p>%s</p><p>This is a demo message.</p>", subjects[i%len(subjects)]),
		IsHtml:   true,
		JobID:    fmt.Sprintf("job_%03d", i+1),
	}
	if i%4 == 0 {
		e.CcEmail = []string{"archive@acme.io"}
	}
	switch status {
	case dto.StatusSent:
		sent := at.Add(3 * time.Second)
		e.AttemptCount = 1
		e.SentAtUtc = &sent
		e.SmtpResponse = "250 2.0.0 OK queued as " + e.JobID
	case dto.StatusFailed:
		e.AttemptCount = 3
		e.ErrorMessage = "550 5.1.1 Recipient address rejected: mailbox unavailable"
		e.SmtpResponse = e.ErrorMessage
	case dto.StatusSending:
		e.AttemptCount = 1
	case dto.StatusCancelled:
		e.ErrorMessage = "Cancelled by user"
	}
	return e
}

package store

import (
	"context"
	"sort"
	"strings"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// Dominios de destinatario que simulan un rebote permanente.
var bounceDomains = []string{"bounce.test", "invalid.test"}

const bounceResponse = "550 5.1.1 Recipient address rejected: mailbox unavailable"

// Emails lista con filtros y paginación. Orden por fecha de creación; "asc"
// explícito invierte el default (desc).
func (s *Store) Emails(_ context.Context, userID, wsID string, f dto.EmailFilters) (dto.PaginatedList[dto.EmailDto], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.roleLocked(userID, wsID); err != nil {
		return dto.PaginatedList[dto.EmailDto]{}, err
	}

	to := strings.ToLower(strings.TrimSpace(f.ToEmailContains))
	subj := strings.ToLower(strings.TrimSpace(f.SubjectContains))

	var all []dto.EmailDto
	for _, e := range s.emails {
		if e.WorkspaceID != wsID {
			continue
		}
		if f.EmailStatus != "" && e.Status != f.EmailStatus {
			continue
		}
		if f.StartDate != nil && e.CreatedAtUtc.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && e.CreatedAtUtc.After(*f.EndDate) {
			continue
		}
		if subj != "" && !strings.Contains(strings.ToLower(e.Subject), subj) {
			continue
		}
		if to != "" && !anyContains(e.ToEmail, to) {
			continue
		}
		all = append(all, cloneEmail(e).EmailDto)
	}

	asc := strings.EqualFold(f.SortOrder, "asc")
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.CreatedAtUtc.Equal(b.CreatedAtUtc) {
			if asc {
				return a.CreatedAtUtc.Before(b.CreatedAtUtc)
			}
			return a.CreatedAtUtc.After(b.CreatedAtUtc)
		}
		return a.ID < b.ID
	})
	return dto.NewPage(all, f.PageNumber, f.PageSize), nil
}

func anyContains(list []string, needle string) bool {
	for _, v := range list {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func (s *Store) Email(_ context.Context, userID, wsID, id string) (dto.EmailDetailsDto, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.roleLocked(userID, wsID); err != nil {
		return dto.EmailDetailsDto{}, err
	}
	e, ok := s.emails[id]
	if !ok || e.WorkspaceID != wsID {
		return dto.EmailDetailsDto{}, ErrEmailNotFound
	}
	return cloneEmail(e), nil
}

// cloneEmail copia el registro sin compartir los slices de destinatarios.
func cloneEmail(e *dto.EmailDetailsDto) dto.EmailDetailsDto {
	out := *e
	out.ToEmail = append([]string(nil), e.ToEmail...)
	out.CcEmail = append([]string(nil), e.CcEmail...)
	out.BccEmail = append([]string(nil), e.BccEmail...)
	return out
}

// SendEmail encola y "entrega" el email. Viewers no pueden enviar.
func (s *Store) SendEmail(_ context.Context, userID, wsID string, cmd dto.SendEmailCommand) (dto.EmailDetailsDto, error) {
	cmd.WorkspaceID = wsID
	if err := validation.SendEmail(cmd).Err(); err != nil {
		return dto.EmailDetailsDto{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireLocked(userID, wsID, dto.RoleMember); err != nil {
		return dto.EmailDetailsDto{}, err
	}
	cfg, err := s.configLocked(wsID, cmd.EmailConfigurationID)
	if err != nil {
		return dto.EmailDetailsDto{}, err
	}
	return s.enqueueLocked(cfg, message{
		to: cmd.ToEmail, cc: cmd.CcEmail, bcc: cmd.BccEmail,
		subject: cmd.Subject, body: cmd.Body, isHTML: cmd.IsHtml, displayName: cmd.FromDisplayName,
	}), nil
}

// SendEmailWithAPIKey envía en nombre del dueño de la key. Sin configuración
// explícita usa la primera del workspace.
func (s *Store) SendEmailWithAPIKey(_ context.Context, userID, wsID string, cmd dto.SendEmailWithApiKeyCommand) (dto.EmailDetailsDto, error) {
	if err := validation.SendEmailWithApiKey(cmd).Err(); err != nil {
		return dto.EmailDetailsDto{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireLocked(userID, wsID, dto.RoleMember); err != nil {
		return dto.EmailDetailsDto{}, err
	}
	var cfg *configRecord
	if cmd.EmailConfigurationID != "" {
		c, err := s.configLocked(wsID, cmd.EmailConfigurationID)
		if err != nil {
			return dto.EmailDetailsDto{}, err
		}
		cfg = c
	} else {
		list := s.configsOfLocked(wsID)
		if len(list) == 0 {
			fe := validation.FieldErrors{}
			fe.Add("emailConfigurationId", "Workspace has no email configuration")
			return dto.EmailDetailsDto{}, fe
		}
		cfg = s.configs[list[0].EmailConfigurationID]
	}
	return s.enqueueLocked(cfg, message{
		to: cmd.ToEmail, cc: cmd.CcEmail, bcc: cmd.BccEmail,
		subject: cmd.Subject, body: cmd.Body, isHTML: cmd.IsHtml, displayName: cmd.FromDisplayName,
	}), nil
}

type message struct {
	to, cc, bcc []string
	subject     string
	body        string
	isHTML      bool
	displayName string
}

// enqueueLocked registra el email y aplica Queued -> Sending -> Sent|Failed.
func (s *Store) enqueueLocked(cfg *configRecord, m message) dto.EmailDetailsDto {
	now := s.clock()
	e := &dto.EmailDetailsDto{
		EmailDto: dto.EmailDto{
			ID:                   s.newID(),
			WorkspaceID:          cfg.WorkspaceID,
			EmailConfigurationID: cfg.EmailConfigurationID,
			FromEmail:            cfg.FromEmail,
			ToEmail:              append([]string(nil), m.to...),
			Subject:              m.subject,
			Status:               dto.StatusQueued,
			CreatedAtUtc:         now,
		},
		CcEmail:  append([]string(nil), m.cc...),
		BccEmail: append([]string(nil), m.bcc...),
		IsHtml:   m.isHTML,
		JobID:    s.newID(),
	}
	if m.isHTML {
		e.BodyHtml = m.body
	} else {
		e.BodyPlainText = m.body
	}
	s.emails[e.ID] = e

	e.Status = dto.StatusSending
	e.AttemptCount++
	if bounces(m.to, m.cc, m.bcc) {
		e.Status = dto.StatusFailed
		e.ErrorMessage = bounceResponse
		e.SmtpResponse = bounceResponse
	} else {
		sent := now
		e.Status = dto.StatusSent
		e.SentAtUtc = &sent
		e.SmtpResponse = "250 2.0.0 OK queued as " + e.JobID
	}
	return cloneEmail(e)
}

func bounces(lists ...[]string) bool {
	for _, l := range lists {
		for _, a := range l {
			_, domain, _ := strings.Cut(strings.ToLower(a), "@")
			for _, b := range bounceDomains {
				if domain == b {
					return true
				}
			}
		}
	}
	return false
}

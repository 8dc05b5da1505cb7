package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	httperrors "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/http/errors"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// WorkspaceSession es el estado de workspace de una sesión: la lista del
// usuario, el workspace actual y el último error. Cada operación pide un token
// fresco al TokenSource y, después de mutar, vuelve a pedir la lista al API en
// lugar de editarla localmente.
//
// No es seguro para uso concurrente; vive lo que dura un request o una sesión
// del CLI.
type WorkspaceSession struct {
	provider api.Provider
	tokens   httpclient.TokenSource
	cache    *WorkspaceCache

	Workspaces []dto.Workspace
	Current    *dto.Workspace
	Onboarding bool
	Err        string
}

type SessionOption func(*WorkspaceSession)

// WithSessionCache comparte la cache de listas de workspaces.
func WithSessionCache(wc *WorkspaceCache) SessionOption {
	return func(s *WorkspaceSession) { s.cache = wc }
}

func NewWorkspaceSession(p api.Provider, ts httpclient.TokenSource, opts ...SessionOption) *WorkspaceSession {
	s := &WorkspaceSession{provider: p, tokens: ts}
	for _, o := range opts {
		o(s)
	}
	if s.cache == nil {
		s.cache = NewWorkspaceCache(nil, 0)
	}
	return s
}

func (s *WorkspaceSession) acquire(ctx context.Context) (*api.Backend, string, error) {
	if s.tokens == nil {
		return nil, "", httpclient.ErrNoToken
	}
	tok, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(tok) == "" {
		return nil, "", httpclient.ErrNoToken
	}
	return s.provider.ForToken(tok), tok, nil
}

func (s *WorkspaceSession) fail(err error) error {
	s.Err = errMessage(err)
	return err
}

func (s *WorkspaceSession) reload(ctx context.Context, b *api.Backend, tok string, fresh bool) error {
	if fresh {
		s.cache.Invalidate(ctx, tok)
	}
	list, err := s.cache.List(ctx, tok, b.Workspaces)
	if err != nil {
		return err
	}
	s.Workspaces = list
	s.Onboarding = len(list) == 0
	if s.Current != nil {
		s.Current = dto.FindWorkspace(s.Workspaces, s.Current.WorkspaceID)
	}
	return nil
}

// Load trae la lista y resuelve el workspace de la URL. Si falta o no es del
// usuario, devuelve un Redirect al primero; sin workspaces queda Onboarding.
func (s *WorkspaceSession) Load(ctx context.Context, urlWorkspaceID string) (Redirect, error) {
	log := logger.From(ctx).With(logger.Layer("session"), logger.Op("WorkspaceSession.Load"))
	s.Err = ""

	b, tok, err := s.acquire(ctx)
	if err != nil {
		return Redirect{}, s.fail(err)
	}
	if err := s.reload(ctx, b, tok, false); err != nil {
		log.Debug("workspace list failed", logger.Err(err))
		return Redirect{}, s.fail(err)
	}
	if s.Onboarding {
		s.Current = nil
		return Redirect{}, nil
	}
	if w := dto.FindWorkspace(s.Workspaces, urlWorkspaceID); w != nil {
		s.Current = w
		return Redirect{}, nil
	}
	s.Current = &s.Workspaces[0]
	return Redirect{Location: WorkspacePath(s.Current.WorkspaceID)}, nil
}

// Create crea el workspace y navega a él. La respuesta trae la API key inicial
// (única vez que el API la devuelve).
func (s *WorkspaceSession) Create(ctx context.Context, name, domain string) (Redirect, *dto.CreateWorkspaceResponse, error) {
	log := logger.From(ctx).With(logger.Layer("session"), logger.Op("WorkspaceSession.Create"))
	s.Err = ""

	name, domain = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(domain))
	if err := validation.Workspace(name, domain).Err(); err != nil {
		return Redirect{}, nil, s.fail(err)
	}
	b, tok, err := s.acquire(ctx)
	if err != nil {
		return Redirect{}, nil, s.fail(err)
	}
	res, err := b.Workspaces.CreateWorkspace(ctx, dto.CreateWorkspaceCommand{Name: name, Domain: domain})
	if err != nil {
		log.Debug("create workspace failed", logger.Err(err))
		return Redirect{}, nil, s.fail(err)
	}
	if err := s.reload(ctx, b, tok, true); err != nil {
		return Redirect{}, res, s.fail(err)
	}
	s.Current = dto.FindWorkspace(s.Workspaces, res.WorkspaceID)
	log.Info("workspace created", logger.WorkspaceID(res.WorkspaceID))
	return Redirect{Location: WorkspacePath(res.WorkspaceID)}, res, nil
}

// Update guarda nombre/dominio/estado. cmd.ID vacío toma workspaceID.
func (s *WorkspaceSession) Update(ctx context.Context, workspaceID string, cmd dto.UpdateWorkspaceCommand) error {
	s.Err = ""
	if cmd.ID == "" {
		cmd.ID = workspaceID
	}
	cmd.Name, cmd.Domain = strings.TrimSpace(cmd.Name), strings.ToLower(strings.TrimSpace(cmd.Domain))
	fe := validation.Workspace(cmd.Name, cmd.Domain)
	if cmd.ID != workspaceID {
		fe.Add("id", "Workspace id does not match the URL")
	}
	if err := fe.Err(); err != nil {
		return s.fail(err)
	}
	b, tok, err := s.acquire(ctx)
	if err != nil {
		return s.fail(err)
	}
	if err := b.Workspaces.UpdateWorkspace(ctx, workspaceID, cmd); err != nil {
		return s.fail(err)
	}
	if err := s.reload(ctx, b, tok, true); err != nil {
		return s.fail(err)
	}
	s.Current = dto.FindWorkspace(s.Workspaces, workspaceID)
	return nil
}

// Switch cambia al workspace indicado si pertenece al usuario.
func (s *WorkspaceSession) Switch(ctx context.Context, workspaceID string) (Redirect, error) {
	s.Err = ""
	b, tok, err := s.acquire(ctx)
	if err != nil {
		return Redirect{}, s.fail(err)
	}
	if err := s.reload(ctx, b, tok, false); err != nil {
		return Redirect{}, s.fail(err)
	}
	w := dto.FindWorkspace(s.Workspaces, workspaceID)
	if w == nil {
		return Redirect{}, s.fail(httperrors.ErrWorkspaceNotFound.WithDetail(fmt.Sprintf("workspace %q", workspaceID)))
	}
	s.Current = w
	return Redirect{Location: WorkspacePath(workspaceID)}, nil
}

// Delete borra el workspace y navega al siguiente (o a la raíz, que muestra onboarding).
func (s *WorkspaceSession) Delete(ctx context.Context, workspaceID string) (Redirect, error) {
	s.Err = ""
	b, tok, err := s.acquire(ctx)
	if err != nil {
		return Redirect{}, s.fail(err)
	}
	if err := b.Workspaces.DeleteWorkspace(ctx, workspaceID); err != nil {
		return Redirect{}, s.fail(err)
	}
	if err := s.reload(ctx, b, tok, true); err != nil {
		return Redirect{Location: BasePath}, s.fail(err)
	}
	if s.Onboarding {
		s.Current = nil
		return Redirect{Location: BasePath}, nil
	}
	s.Current = &s.Workspaces[0]
	return Redirect{Location: WorkspacePath(s.Current.WorkspaceID)}, nil
}

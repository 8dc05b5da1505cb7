// Package store es el estado en memoria del twin del API de Email EZ. Lo usan
// el servidor HTTP del twin y, en proceso, el proveedor de datos demo.
//
// Todas las operaciones reciben el userID autenticado y aplican el control de
// acceso por rol del workspace. Un workspace al que el usuario no pertenece se
// reporta como inexistente.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/security/secretbox"
)

var (
	ErrWorkspaceNotFound     = errors.New("workspace not found")
	ErrConfigurationNotFound = errors.New("email configuration not found")
	ErrEmailNotFound         = errors.New("email not found")
	ErrMemberNotFound        = errors.New("member not found")
	ErrAPIKeyNotFound        = errors.New("api key not found")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrInvalidAPIKey         = errors.New("invalid api key")
)

// User es un usuario conocido por el twin (el sub de su JWT).
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type configRecord struct {
	dto.EmailConfiguration
	password string // sellada con el Box del store
}

type apiKeyRecord struct {
	dto.WorkspaceApiKey
	workspaceID string
	userID      string
	prefix      string
	hash        []byte
}

type Store struct {
	mu sync.RWMutex

	now        func() time.Time
	newID      func() string
	bcryptCost int
	box        *secretbox.Box

	users      map[string]*User
	workspaces map[string]*dto.Workspace
	members    map[string]map[string]*dto.WorkspaceMember // wsID -> userID
	configs    map[string]*configRecord
	emails     map[string]*dto.EmailDetailsDto
	apiKeys    map[string]*apiKeyRecord
}

type Option func(*Store)

// WithClock fija el reloj (tests y datos demo deterministas).
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithIDs fija el generador de ids.
func WithIDs(newID func() string) Option { return func(s *Store) { s.newID = newID } }

// WithBCryptCost baja el costo en tests.
func WithBCryptCost(cost int) Option { return func(s *Store) { s.bcryptCost = cost } }

// WithSecretBox sella las passwords SMTP con b. Sin esta opción se usa una
// clave efímera: los snapshots con secrets siguen saliendo en claro.
func WithSecretBox(b *secretbox.Box) Option { return func(s *Store) { s.box = b } }

func New(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		newID:      uuid.NewString,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(s)
	}
	if s.box == nil {
		b, err := secretbox.NewRandom()
		if err != nil {
			panic("store: " + err.Error())
		}
		s.box = b
	}
	s.resetLocked()
	return s
}

func (s *Store) resetLocked() {
	s.users = map[string]*User{}
	s.workspaces = map[string]*dto.Workspace{}
	s.members = map[string]map[string]*dto.WorkspaceMember{}
	s.configs = map[string]*configRecord{}
	s.emails = map[string]*dto.EmailDetailsDto{}
	s.apiKeys = map[string]*apiKeyRecord{}
}

// Reset borra todo el estado.
func (s *Store) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

func (s *Store) clock() time.Time { return s.now().UTC() }

// EnsureUser registra el usuario si no existe. email vacío no pisa uno previo.
func (s *Store) EnsureUser(id, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureUserLocked(id, email)
}

func (s *Store) ensureUserLocked(id, email string) {
	if u, ok := s.users[id]; ok {
		if email != "" {
			u.Email = email
		}
		return
	}
	s.users[id] = &User{ID: id, Email: email}
}

// roleLocked devuelve el rol de userID en wsID.
func (s *Store) roleLocked(userID, wsID string) (dto.MemberRole, error) {
	if _, ok := s.workspaces[wsID]; !ok {
		return 0, ErrWorkspaceNotFound
	}
	m, ok := s.members[wsID][userID]
	if !ok || m.IsDeleted {
		return 0, ErrWorkspaceNotFound
	}
	return m.Role, nil
}

// requireLocked exige un rol igual o más privilegiado que least
// (Owner < Admin < Member < Viewer).
func (s *Store) requireLocked(userID, wsID string, least dto.MemberRole) error {
	role, err := s.roleLocked(userID, wsID)
	if err != nil {
		return err
	}
	if role > least {
		return ErrForbidden
	}
	return nil
}

func (s *Store) activeMembersLocked(wsID string) []dto.WorkspaceMember {
	out := make([]dto.WorkspaceMember, 0, len(s.members[wsID]))
	for _, m := range s.members[wsID] {
		if !m.IsDeleted {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

package store

import (
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
)

// State es la foto completa del store. Sirve para /admin/state, para el seed
// inicial y para los snapshots en disco.
type State struct {
	Users          []User                `json:"users"`
	Workspaces     []dto.Workspace       `json:"workspaces"`
	Members        []dto.WorkspaceMember `json:"members"`
	Configurations []StateConfiguration  `json:"configurations"`
	Emails         []dto.EmailDetailsDto `json:"emails"`
	APIKeys        []StateAPIKey         `json:"apiKeys"`
}

type StateConfiguration struct {
	dto.EmailConfiguration
	Password string `json:"password,omitempty"`
}

type StateAPIKey struct {
	dto.WorkspaceApiKey
	WorkspaceID string `json:"workspaceId"`
	UserID      string `json:"userId"`
	Prefix      string `json:"prefix"`
	Hash        string `json:"hash,omitempty"` // bcrypt en base64
	// PlainKey solo en seeds: se hashea al cargar y nunca se exporta.
	PlainKey string `json:"plainKey,omitempty"`
}

// Snapshot exporta el estado. Sin secrets, passwords y hashes quedan vacíos.
func (s *Store) Snapshot(withSecrets bool) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st State
	for _, u := range s.users {
		st.Users = append(st.Users, *u)
	}
	for _, w := range s.workspaces {
		st.Workspaces = append(st.Workspaces, *w)
	}
	for _, byUser := range s.members {
		for _, m := range byUser {
			st.Members = append(st.Members, *m)
		}
	}
	for _, c := range s.configs {
		sc := StateConfiguration{EmailConfiguration: c.EmailConfiguration}
		if withSecrets {
			// una password que no abre se exporta vacía
			sc.Password, _ = s.box.Open(c.password)
		}
		st.Configurations = append(st.Configurations, sc)
	}
	for _, e := range s.emails {
		st.Emails = append(st.Emails, cloneEmail(e))
	}
	for _, k := range s.apiKeys {
		sk := StateAPIKey{WorkspaceApiKey: k.WorkspaceApiKey, WorkspaceID: k.workspaceID, UserID: k.userID, Prefix: k.prefix}
		if withSecrets {
			sk.Hash = base64.StdEncoding.EncodeToString(k.hash)
		}
		st.APIKeys = append(st.APIKeys, sk)
	}

	sort.Slice(st.Users, func(i, j int) bool { return st.Users[i].ID < st.Users[j].ID })
	sort.Slice(st.Workspaces, func(i, j int) bool { return st.Workspaces[i].WorkspaceID < st.Workspaces[j].WorkspaceID })
	sort.Slice(st.Members, func(i, j int) bool { return st.Members[i].ID < st.Members[j].ID })
	sort.Slice(st.Configurations, func(i, j int) bool {
		return st.Configurations[i].EmailConfigurationID < st.Configurations[j].EmailConfigurationID
	})
	sort.Slice(st.Emails, func(i, j int) bool { return st.Emails[i].ID < st.Emails[j].ID })
	sort.Slice(st.APIKeys, func(i, j int) bool { return st.APIKeys[i].ID < st.APIKeys[j].ID })
	return st
}

// Load reemplaza el estado por st. Las API keys con PlainKey se hashean acá.
func (s *Store) Load(st State) error {
	keys := make([]*apiKeyRecord, 0, len(st.APIKeys))
	for _, k := range st.APIKeys {
		rec := &apiKeyRecord{WorkspaceApiKey: k.WorkspaceApiKey, workspaceID: k.WorkspaceID, userID: k.UserID, prefix: k.Prefix}
		switch {
		case k.PlainKey != "":
			prefix, err := keyPrefix(k.PlainKey)
			if err != nil {
				return fmt.Errorf("store: api key %s: %w", k.ID, err)
			}
			h, err := s.hashKey(k.PlainKey)
			if err != nil {
				return err
			}
			rec.prefix, rec.hash = prefix, h
		case k.Hash != "":
			h, err := base64.StdEncoding.DecodeString(k.Hash)
			if err != nil {
				return fmt.Errorf("store: api key %s: hash: %w", k.ID, err)
			}
			rec.hash = h
		}
		keys = append(keys, rec)
	}
	configs := make([]*configRecord, 0, len(st.Configurations))
	for _, c := range st.Configurations {
		sealed, err := s.box.Seal(c.Password)
		if err != nil {
			return fmt.Errorf("store: configuration %s: %w", c.EmailConfigurationID, err)
		}
		configs = append(configs, &configRecord{EmailConfiguration: c.EmailConfiguration, password: sealed})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()

	for _, u := range st.Users {
		s.users[u.ID] = &u
	}
	for _, w := range st.Workspaces {
		s.workspaces[w.WorkspaceID] = &w
	}
	for _, m := range st.Members {
		if _, ok := s.workspaces[m.WorkspaceID]; !ok {
			return fmt.Errorf("store: member %s: workspace %s desconocido", m.ID, m.WorkspaceID)
		}
		if s.members[m.WorkspaceID] == nil {
			s.members[m.WorkspaceID] = map[string]*dto.WorkspaceMember{}
		}
		s.members[m.WorkspaceID][m.UserID] = &m
		s.ensureUserLocked(m.UserID, "")
	}
	for _, c := range configs {
		s.configs[c.EmailConfigurationID] = c
	}
	for i := range st.Emails {
		e := cloneEmail(&st.Emails[i])
		s.emails[e.ID] = &e
	}
	for _, k := range keys {
		s.apiKeys[k.ID] = k
	}
	return nil
}

package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/cache"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// TabKind es el discriminador de la página de settings.
type TabKind string

const (
	TabGeneral       TabKind = "general"
	TabNotifications TabKind = "notifications"
	TabSecurity      TabKind = "security"
	TabSMTPDefaults  TabKind = "smtp-defaults"
)

// Tabs en el orden de la UI.
var Tabs = []TabKind{TabGeneral, TabNotifications, TabSecurity, TabSMTPDefaults}

func ParseTabKind(s string) (TabKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TabGeneral, nil
	}
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown settings tab %q", s)
}

// SettingsTab es la unión de los formularios de settings. Cada variante valida
// sus propios campos.
type SettingsTab interface {
	Kind() TabKind
	Validate() validation.FieldErrors
	settingsTab()
}

// GeneralSettings se guarda en el API como update del workspace.
type GeneralSettings struct {
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	IsActive bool   `json:"isActive"`
}

type NotificationSettings struct {
	NotifyOnFailure  bool     `json:"notifyOnFailure"`
	DailyDigest      bool     `json:"dailyDigest"`
	Recipients       []string `json:"recipients"`
	FailureThreshold int      `json:"failureThreshold"` // % de fallos que dispara el aviso
}

type SecuritySettings struct {
	RequireTwoFactor      bool     `json:"requireTwoFactor"`
	SessionTimeoutMinutes int      `json:"sessionTimeoutMinutes"`
	AllowedIPRanges       []string `json:"allowedIpRanges"`
	APIKeyRotationDays    int      `json:"apiKeyRotationDays"` // 0 = sin rotación
}

type SMTPDefaultSettings struct {
	DefaultConfigurationID string `json:"defaultConfigurationId"`
	DefaultDisplayName     string `json:"defaultDisplayName"`
	ReplyTo                string `json:"replyTo"`
	HTMLByDefault          bool   `json:"htmlByDefault"`
	MaxRetries             int    `json:"maxRetries"`
}

func (GeneralSettings) Kind() TabKind      { return TabGeneral }
func (NotificationSettings) Kind() TabKind { return TabNotifications }
func (SecuritySettings) Kind() TabKind     { return TabSecurity }
func (SMTPDefaultSettings) Kind() TabKind  { return TabSMTPDefaults }

func (GeneralSettings) settingsTab()      {}
func (NotificationSettings) settingsTab() {}
func (SecuritySettings) settingsTab()     {}
func (SMTPDefaultSettings) settingsTab()  {}

func (g GeneralSettings) Validate() validation.FieldErrors {
	return validation.Workspace(g.Name, g.Domain)
}

func (n NotificationSettings) Validate() validation.FieldErrors {
	fe := validation.FieldErrors{}
	if (n.NotifyOnFailure || n.DailyDigest) && len(n.Recipients) == 0 {
		fe.Add("recipients", "Add at least one recipient")
	}
	for _, r := range n.Recipients {
		if !validation.ValidEmail(r) {
			fe.Add("recipients", "Invalid email address: "+r)
			break
		}
	}
	if n.FailureThreshold < 0 || n.FailureThreshold > 100 {
		fe.Add("failureThreshold", "Threshold must be between 0 and 100")
	}
	return fe
}

func (s SecuritySettings) Validate() validation.FieldErrors {
	fe := validation.FieldErrors{}
	if s.SessionTimeoutMinutes < 5 || s.SessionTimeoutMinutes > 1440 {
		fe.Add("sessionTimeoutMinutes", "Session timeout must be between 5 and 1440 minutes")
	}
	for _, r := range s.AllowedIPRanges {
		if _, err := netip.ParsePrefix(strings.TrimSpace(r)); err != nil {
			if _, err := netip.ParseAddr(strings.TrimSpace(r)); err != nil {
				fe.Add("allowedIpRanges", "Invalid IP or CIDR range: "+r)
				break
			}
		}
	}
	if s.APIKeyRotationDays != 0 && (s.APIKeyRotationDays < 30 || s.APIKeyRotationDays > 365) {
		fe.Add("apiKeyRotationDays", "Rotation must be 0 (off) or between 30 and 365 days")
	}
	return fe
}

func (d SMTPDefaultSettings) Validate() validation.FieldErrors {
	fe := validation.FieldErrors{}
	if d.ReplyTo != "" && !validation.ValidEmail(d.ReplyTo) {
		fe.Add("replyTo", "Please enter a valid email address")
	}
	if d.MaxRetries < 0 || d.MaxRetries > 10 {
		fe.Add("maxRetries", "Retries must be between 0 and 10")
	}
	if len(d.DefaultDisplayName) > 100 {
		fe.Add("defaultDisplayName", "Display name must be at most 100 characters")
	}
	return fe
}

// DefaultSettings devuelve la variante con sus valores iniciales.
func DefaultSettings(kind TabKind) SettingsTab {
	switch kind {
	case TabNotifications:
		return NotificationSettings{FailureThreshold: 10}
	case TabSecurity:
		return SecuritySettings{SessionTimeoutMinutes: 60}
	case TabSMTPDefaults:
		return SMTPDefaultSettings{HTMLByDefault: true, MaxRetries: 3}
	default:
		return GeneralSettings{IsActive: true}
	}
}

type settingsEnvelope struct {
	Tab      TabKind         `json:"tab"`
	Settings json.RawMessage `json:"settings"`
}

// DecodeSettingsTab lee {"tab": "...", "settings": {...}}. Campos desconocidos
// para la variante son error.
func DecodeSettingsTab(b []byte) (SettingsTab, error) {
	var env settingsEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	kind, err := ParseTabKind(string(env.Tab))
	if err != nil || env.Tab == "" {
		return nil, fmt.Errorf("settings: unknown tab %q", env.Tab)
	}
	if len(bytes.TrimSpace(env.Settings)) == 0 {
		return nil, fmt.Errorf("settings: missing settings for tab %q", kind)
	}

	var dst SettingsTab
	switch kind {
	case TabGeneral:
		var v GeneralSettings
		err = strictUnmarshal(env.Settings, &v)
		dst = v
	case TabNotifications:
		var v NotificationSettings
		err = strictUnmarshal(env.Settings, &v)
		dst = v
	case TabSecurity:
		var v SecuritySettings
		err = strictUnmarshal(env.Settings, &v)
		dst = v
	case TabSMTPDefaults:
		var v SMTPDefaultSettings
		err = strictUnmarshal(env.Settings, &v)
		dst = v
	}
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", kind, err)
	}
	return dst, nil
}

// EncodeSettingsTab es el inverso de DecodeSettingsTab.
func EncodeSettingsTab(t SettingsTab) ([]byte, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(settingsEnvelope{Tab: t.Kind(), Settings: raw})
}

func strictUnmarshal(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// generalFrom arma la pestaña general desde el workspace del API.
func generalFrom(w dto.Workspace) GeneralSettings {
	return GeneralSettings{Name: w.Name, Domain: w.Domain, IsActive: w.IsActive}
}

// settingsTTL: las preferencias no expiran en la práctica.
const settingsTTL = 365 * 24 * time.Hour

// SettingsStore guarda las pestañas que el API no modela (todas menos general).
type SettingsStore struct {
	cache cache.Client
}

func NewSettingsStore(c cache.Client) *SettingsStore { return &SettingsStore{cache: c} }

func settingsKey(workspaceID string, kind TabKind) string {
	return "settings:" + workspaceID + ":" + string(kind)
}

// Load devuelve lo guardado o los valores por defecto.
func (s *SettingsStore) Load(ctx context.Context, workspaceID string, kind TabKind) (SettingsTab, error) {
	b, err := s.cache.Get(ctx, settingsKey(workspaceID, kind))
	if cache.IsNotFound(err) {
		return DefaultSettings(kind), nil
	}
	if err != nil {
		return DefaultSettings(kind), err
	}
	t, err := DecodeSettingsTab(b)
	if err != nil {
		return DefaultSettings(kind), err
	}
	return t, nil
}

func (s *SettingsStore) Save(ctx context.Context, workspaceID string, t SettingsTab) error {
	if t.Kind() == TabGeneral {
		return fmt.Errorf("settings: general tab is stored in the API")
	}
	b, err := EncodeSettingsTab(t)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, settingsKey(workspaceID, t.Kind()), b, settingsTTL)
}

package dashboard

import (
	"net/url"
	"strings"
)

// BasePath es la raíz de las páginas del dashboard.
const BasePath = "/dashboard"

// Secciones de página bajo un workspace.
const (
	SectionOverview       = ""
	SectionEmails         = "emails"
	SectionConfigurations = "configurations"
	SectionAnalytics      = "analytics"
	SectionSettings       = "settings"
	SectionAPIKeys        = "api-keys"
	SectionMembers        = "members"
)

// WorkspacePath arma /dashboard/{id}[/section...].
func WorkspacePath(workspaceID string, section ...string) string {
	p := BasePath + "/" + url.PathEscape(workspaceID)
	for _, s := range section {
		s = strings.Trim(s, "/")
		if s != "" {
			p += "/" + s
		}
	}
	return p
}

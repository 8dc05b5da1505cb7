package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MemberRole viaja como número.
type MemberRole int

const (
	RoleOwner MemberRole = iota
	RoleAdmin
	RoleMember
	RoleViewer
)

var roleNames = [...]string{"Owner", "Admin", "Member", "Viewer"}

func (r MemberRole) Valid() bool { return r >= RoleOwner && r <= RoleViewer }

func (r MemberRole) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// ParseMemberRole acepta el nombre (case-insensitive) o el número.
func ParseMemberRole(s string) (MemberRole, error) {
	s = strings.TrimSpace(s)
	for i, n := range roleNames {
		if strings.EqualFold(n, s) {
			return MemberRole(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && MemberRole(n).Valid() {
		return MemberRole(n), nil
	}
	return 0, fmt.Errorf("invalid member role %q", s)
}

type WorkspaceMember struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	WorkspaceID string     `json:"workspaceId"`
	Role        MemberRole `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	IsDeleted   bool       `json:"isDeleted"`
}

type AddMemberCommand struct {
	UserID string     `json:"userId"`
	Role   MemberRole `json:"role"`
}

type UpdateMemberRoleCommand struct {
	Role MemberRole `json:"role"`
}

type AddMemberResponse struct {
	MemberID  string `json:"memberId"`
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
}

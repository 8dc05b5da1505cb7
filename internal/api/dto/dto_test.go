package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailStatus_OnlyClosedSetDecodes(t *testing.T) {
	for _, s := range EmailStatuses {
		var e EmailDto
		require.NoError(t, json.Unmarshal([]byte(`{"id":"1","status":"`+string(s)+`"}`), &e))
		assert.Equal(t, s, e.Status)
	}

	for _, bad := range []string{`"Delivered"`, `"sent"`, `""`, `3`} {
		var e EmailDto
		err := json.Unmarshal([]byte(`{"id":"1","status":`+bad+`}`), &e)
		assert.Error(t, err, bad)
	}
}

func TestEmailStatus_Terminal(t *testing.T) {
	assert.False(t, StatusQueued.Terminal())
	assert.False(t, StatusSending.Terminal())
	assert.True(t, StatusSent.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestSendEmailCommand_NilCopiesAreNull(t *testing.T) {
	b, err := json.Marshal(SendEmailCommand{WorkspaceID: "w", ToEmail: []string{"a@b.io"}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"ccEmail":null`)
	assert.Contains(t, string(b), `"bccEmail":null`)
}

func TestUpdateEmailConfiguration_BlankPasswordOmitted(t *testing.T) {
	b, err := json.Marshal(UpdateEmailConfigurationCommand{EmailConfigurationID: "c1", SmtpPort: 587})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
}

func TestNewPage(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}
	p := NewPage(all, 2, 2)
	assert.Equal(t, []int{3, 4}, p.Items)
	assert.Equal(t, 5, p.TotalCount)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPreviousPage)
	assert.True(t, p.HasNextPage)

	last := NewPage(all, 3, 2)
	assert.Equal(t, []int{5}, last.Items)
	assert.False(t, last.HasNextPage)

	beyond := NewPage(all, 9, 2)
	assert.Empty(t, beyond.Items)

	empty := EmptyPage[int](1, 10)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
}

func TestParseMemberRole(t *testing.T) {
	r, err := ParseMemberRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseMemberRole("3")
	require.NoError(t, err)
	assert.Equal(t, RoleViewer, r)

	_, err = ParseMemberRole("9")
	assert.Error(t, err)
	_, err = ParseMemberRole("superuser")
	assert.Error(t, err)
}

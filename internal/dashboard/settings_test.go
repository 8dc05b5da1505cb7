package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/cache"
)

func TestDecodeSettingsTab(t *testing.T) {
	tab, err := DecodeSettingsTab([]byte(`{"tab":"security","settings":{"requireTwoFactor":true,"sessionTimeoutMinutes":30,"allowedIpRanges":["10.0.0.0/8"],"apiKeyRotationDays":90}}`))
	require.NoError(t, err)
	sec, ok := tab.(SecuritySettings)
	require.True(t, ok)
	assert.True(t, sec.RequireTwoFactor)
	assert.Equal(t, 30, sec.SessionTimeoutMinutes)
	assert.Empty(t, sec.Validate())

	tab, err = DecodeSettingsTab([]byte(`{"tab":"general","settings":{"name":"Acme","domain":"acme.io","isActive":true}}`))
	require.NoError(t, err)
	assert.Equal(t, GeneralSettings{Name: "Acme", Domain: "acme.io", IsActive: true}, tab)

	bad := []string{
		`{"tab":"billing","settings":{}}`,
		`{"settings":{"name":"x"}}`,
		`{"tab":"general"}`,
		`{"tab":"notifications","settings":{"notifyOnFailure":true,"sessionTimeoutMinutes":5}}`,
		`not json`,
	}
	for _, b := range bad {
		_, err := DecodeSettingsTab([]byte(b))
		assert.Error(t, err, b)
	}
}

func TestEncodeSettingsTab_RoundTrip(t *testing.T) {
	in := SMTPDefaultSettings{DefaultConfigurationID: "cfg_1", ReplyTo: "ops@acme.io", HTMLByDefault: true, MaxRetries: 2}
	b, err := EncodeSettingsTab(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"tab":"smtp-defaults"`)

	out, err := DecodeSettingsTab(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSettingsValidate(t *testing.T) {
	cases := []struct {
		name   string
		tab    SettingsTab
		fields []string
	}{
		{"general ok", GeneralSettings{Name: "Acme", Domain: "acme.io"}, nil},
		{"general missing name", GeneralSettings{Domain: "acme.io"}, []string{"name"}},
		{"notifications need recipients", NotificationSettings{NotifyOnFailure: true}, []string{"recipients"}},
		{"notifications bad address", NotificationSettings{DailyDigest: true, Recipients: []string{"nope"}}, []string{"recipients"}},
		{"notifications threshold", NotificationSettings{FailureThreshold: 101}, []string{"failureThreshold"}},
		{"security timeout", SecuritySettings{SessionTimeoutMinutes: 2}, []string{"sessionTimeoutMinutes"}},
		{"security bad range", SecuritySettings{SessionTimeoutMinutes: 60, AllowedIPRanges: []string{"10.0.0.0/99"}}, []string{"allowedIpRanges"}},
		{"security single ip", SecuritySettings{SessionTimeoutMinutes: 60, AllowedIPRanges: []string{"192.168.1.10"}}, nil},
		{"security rotation", SecuritySettings{SessionTimeoutMinutes: 60, APIKeyRotationDays: 7}, []string{"apiKeyRotationDays"}},
		{"smtp defaults", SMTPDefaultSettings{ReplyTo: "x", MaxRetries: 11}, []string{"replyTo", "maxRetries"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fe := tc.tab.Validate()
			assert.Len(t, fe, len(tc.fields))
			for _, f := range tc.fields {
				assert.Contains(t, fe, f)
			}
		})
	}
	// general sale del workspace; el resto debe ser válido sin tocar nada
	for _, k := range Tabs[1:] {
		assert.Empty(t, DefaultSettings(k).Validate(), "defaults de %s", k)
	}
}

func TestSettingsStore(t *testing.T) {
	s := NewSettingsStore(cache.NewMemory("t", time.Minute))
	ctx := context.Background()

	got, err := s.Load(ctx, "ws_a", TabNotifications)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(TabNotifications), got)

	want := NotificationSettings{DailyDigest: true, Recipients: []string{"ops@acme.io"}, FailureThreshold: 5}
	require.NoError(t, s.Save(ctx, "ws_a", want))

	got, err = s.Load(ctx, "ws_a", TabNotifications)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	other, err := s.Load(ctx, "ws_b", TabNotifications)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(TabNotifications), other)

	assert.Error(t, s.Save(ctx, "ws_a", GeneralSettings{Name: "x"}))
}

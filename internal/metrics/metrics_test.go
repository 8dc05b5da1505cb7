package metrics

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                                 "/",
		"/":                                "/",
		"/api/v1/workspaces":               "/api/v1/workspaces",
		"/api/v1/workspaces/3f2b8a1c-0d4e-4b6f-9a2c-1e5d7c9b0a11/emails?pageNumber=2": "/api/v1/workspaces/:param/emails",
		"/api/v1/workspaces/42/members/7/role":                                          "/api/v1/workspaces/:param/members/:param/role",
		"/workspace/abcdefABCDEF0123456789xyz/settings":                                 "/workspace/:param/settings",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

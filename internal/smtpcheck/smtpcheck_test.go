package smtpcheck

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	gomail "github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP es un servidor SMTP mínimo: EHLO con AUTH PLAIN, un usuario válido y
// DATA capturado en memoria.
type fakeSMTP struct {
	ln       net.Listener
	user     string
	pass     string
	startTLS bool

	mu   sync.Mutex
	data []string
}

func startFakeSMTP(t *testing.T, user, pass string) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeSMTP{ln: ln, user: user, pass: pass}
	go f.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return f
}

func (f *fakeSMTP) port() int { return f.ln.Addr().(*net.TCPAddr).Port }

func (f *fakeSMTP) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.data...)
}

func (f *fakeSMTP) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeSMTP) handle(conn net.Conn) {
	defer conn.Close()
	w := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
	w("220 localhost ESMTP ready")

	rd := bufio.NewReader(conn)
	authed := false
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
			w("250-localhost")
			if f.startTLS {
				w("250-STARTTLS")
			}
			w("250 AUTH PLAIN")
		case strings.HasPrefix(line, "AUTH PLAIN"):
			raw, _ := base64.StdEncoding.DecodeString(strings.TrimSpace(strings.TrimPrefix(line, "AUTH PLAIN")))
			parts := strings.Split(string(raw), "\x00")
			if len(parts) == 3 && parts[1] == f.user && parts[2] == f.pass {
				authed = true
				w("235 2.7.0 Authentication successful")
			} else {
				w("535 5.7.8 Authentication failed")
			}
		case strings.HasPrefix(line, "MAIL FROM:"), strings.HasPrefix(line, "RCPT TO:"):
			if !authed {
				w("530 5.7.0 Authentication required")
				continue
			}
			w("250 2.1.0 Ok")
		case line == "DATA":
			w("354 End data with <CR><LF>.<CR><LF>")
			var b strings.Builder
			for {
				l, err := rd.ReadString('\n')
				if err != nil {
					return
				}
				if strings.TrimSpace(l) == "." {
					break
				}
				b.WriteString(l)
			}
			f.mu.Lock()
			f.data = append(f.data, b.String())
			f.mu.Unlock()
			w("250 2.0.0 Ok: queued")
		case line == "QUIT":
			w("221 2.0.0 Bye")
			return
		default:
			w("250 Ok")
		}
	}
}

func settingsFor(f *fakeSMTP, pass string) Settings {
	return Settings{
		Host:        "127.0.0.1",
		Port:        f.port(),
		Username:    f.user,
		Password:    pass,
		FromEmail:   "noreply@acme.io",
		DisplayName: "Acme",
	}
}

func TestProbe_OK(t *testing.T) {
	f := startFakeSMTP(t, "apikey", "s3cret")
	res := New(5*time.Second).Probe(context.Background(), settingsFor(f, "s3cret"))
	assert.True(t, res.OK, res.Message)
	assert.Empty(t, res.Code)
	assert.Empty(t, f.messages())
}

func TestProbe_AuthFailure(t *testing.T) {
	f := startFakeSMTP(t, "apikey", "s3cret")
	res := New(5*time.Second).Probe(context.Background(), settingsFor(f, "wrong"))
	assert.False(t, res.OK)
	assert.Equal(t, "auth", res.Code)
	assert.False(t, res.Temporary)
}

func TestProbe_UseSslRequiresStartTLS(t *testing.T) {
	f := startFakeSMTP(t, "apikey", "s3cret")
	s := settingsFor(f, "s3cret")
	s.UseSsl = true
	res := New(5*time.Second).Probe(context.Background(), s)
	assert.False(t, res.OK)
	assert.Equal(t, "starttls", res.Code)
}

func TestProbe_InvalidSettingsNeverDial(t *testing.T) {
	dialed := false
	p := &Prober{dial: func(*gomail.Dialer) (gomail.SendCloser, error) {
		dialed = true
		return nil, errors.New("unexpected")
	}}
	res := p.Probe(context.Background(), Settings{Host: "smtp.acme.io", Port: 70000})
	assert.Equal(t, "invalid_settings", res.Code)
	assert.False(t, dialed)
}

func TestSendTest_DeliversMessage(t *testing.T) {
	f := startFakeSMTP(t, "apikey", "s3cret")
	res := New(5*time.Second).SendTest(context.Background(), settingsFor(f, "s3cret"), "ops@acme.io")
	require.True(t, res.OK, res.Message)

	msgs := f.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Subject: "+TestSubject)
	assert.Contains(t, msgs[0], "ops@acme.io")
}

func TestSendTest_BadRecipient(t *testing.T) {
	res := New(time.Second).SendTest(context.Background(), Settings{}, "not-an-email")
	assert.Equal(t, "invalid_recipient", res.Code)
}

func TestProbe_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	res := New(2*time.Second).Probe(context.Background(), Settings{
		Host:        "127.0.0.1",
		Port:        port,
		Username:    "u",
		Password:    "p",
		FromEmail:   "a@acme.io",
		DisplayName: "A",
	})
	assert.False(t, res.OK)
	assert.Equal(t, "dial", res.Code, res.Message)
	assert.True(t, res.Temporary)
}

func TestDialer_TLSModes(t *testing.T) {
	p := New(0)
	ctx := context.Background()

	d := p.dialer(ctx, Settings{Host: "smtp.gmail.com", Port: 465, UseSsl: true})
	assert.True(t, d.SSL)
	assert.Equal(t, DefaultTimeout, d.Timeout)

	d = p.dialer(ctx, Settings{Host: "smtp.gmail.com", Port: 587, UseSsl: true})
	assert.False(t, d.SSL)
	assert.Equal(t, gomail.MandatoryStartTLS, d.StartTLSPolicy)

	d = p.dialer(ctx, Settings{Host: "localhost", Port: 25})
	assert.Equal(t, gomail.OpportunisticStartTLS, d.StartTLSPolicy)

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	d = p.dialer(short, Settings{Host: "h", Port: 25})
	assert.LessOrEqual(t, d.Timeout, 100*time.Millisecond)
}

func TestDiagnoseSMTP(t *testing.T) {
	cases := []struct {
		msg  string
		want string
	}{
		{"535 5.7.8 Username and Password not accepted", "auth"},
		{"dial tcp 10.0.0.1:587: connect: connection refused", "dial"},
		{"x509: certificate signed by unknown authority", "tls"},
		{"421 4.7.0 Try again later", "rate_limited"},
		{"550 5.1.1 user unknown", "invalid_recipient"},
		{"550 5.7.1 message rejected due to DMARC policy", "rejected"},
		{"something odd", "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DiagnoseSMTP(errors.New(tc.msg)).Code, tc.msg)
	}
	assert.Equal(t, "starttls", DiagnoseSMTP(gomail.StartTLSUnsupportedError{Policy: gomail.MandatoryStartTLS}).Code)
	assert.Equal(t, "unknown", DiagnoseSMTP(nil).Code)
}

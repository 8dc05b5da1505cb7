// Package smtpcheck prueba una configuración SMTP desde este proceso: conexión,
// TLS y autenticación ("test connection") y, opcionalmente, un envío de prueba.
// El API de Email EZ no expone el password guardado, así que el caller lo aporta.
package smtpcheck

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"time"

	gomail "github.com/go-mail/mail"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/validation"
)

// DefaultTimeout acota dial + handshake + auth.
const DefaultTimeout = 15 * time.Second

// Settings son los campos de una configuración de email más el password.
type Settings struct {
	Host        string `json:"smtpHost"`
	Port        int    `json:"smtpPort"`
	UseSsl      bool   `json:"useSsl"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FromEmail   string `json:"fromEmail"`
	DisplayName string `json:"displayName"`

	// Solo dev: acepta certificados no verificables.
	InsecureSkipVerify bool `json:"-"`
}

// FromConfiguration arma Settings a partir de una configuración leída del API.
func FromConfiguration(c dto.EmailConfiguration, password string) Settings {
	return Settings{
		Host:        c.SmtpHost,
		Port:        c.SmtpPort,
		UseSsl:      c.UseSsl,
		Username:    c.Username,
		Password:    password,
		FromEmail:   c.FromEmail,
		DisplayName: c.DisplayName,
	}
}

// Validate usa las mismas reglas que el formulario de configuración.
func (s Settings) Validate() validation.FieldErrors {
	return validation.EmailConfiguration(validation.SMTPSettings{
		SmtpHost:    s.Host,
		SmtpPort:    s.Port,
		Username:    s.Username,
		Password:    s.Password,
		FromEmail:   s.FromEmail,
		DisplayName: s.DisplayName,
	}, true)
}

// Result es el resultado de una prueba. Code sale de DiagnoseSMTP cuando falla.
type Result struct {
	OK         bool          `json:"ok"`
	Code       string        `json:"code,omitempty"`
	Temporary  bool          `json:"temporary,omitempty"`
	Message    string        `json:"message"`
	DurationMs int64         `json:"durationMs"`
	RetryAfter time.Duration `json:"-"`
}

// Prober ejecuta las pruebas. El zero value usa DefaultTimeout.
type Prober struct {
	Timeout time.Duration

	// dial se reemplaza en tests.
	dial func(d *gomail.Dialer) (gomail.SendCloser, error)
}

func New(timeout time.Duration) *Prober { return &Prober{Timeout: timeout} }

// dialer: useSsl con puerto 465 es TLS implícito; en otro puerto exige STARTTLS.
// Sin useSsl se negocia STARTTLS solo si el servidor lo ofrece.
func (p *Prober) dialer(ctx context.Context, s Settings) *gomail.Dialer {
	d := gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)
	d.SSL = s.UseSsl && s.Port == 465
	switch {
	case d.SSL:
	case s.UseSsl:
		d.StartTLSPolicy = gomail.MandatoryStartTLS
	default:
		d.StartTLSPolicy = gomail.OpportunisticStartTLS
	}
	d.TLSConfig = &tls.Config{ServerName: s.Host, InsecureSkipVerify: s.InsecureSkipVerify}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	d.Timeout = timeout
	return d
}

func (p *Prober) open(d *gomail.Dialer) (gomail.SendCloser, error) {
	if p.dial != nil {
		return p.dial(d)
	}
	return d.Dial()
}

// Probe conecta y autentica sin enviar nada.
func (p *Prober) Probe(ctx context.Context, s Settings) Result {
	return p.run(ctx, s, "probe", func(d *gomail.Dialer) error {
		sc, err := p.open(d)
		if err != nil {
			return err
		}
		return sc.Close()
	})
}

// SendTest envía un email de prueba a to con la configuración dada.
func (p *Prober) SendTest(ctx context.Context, s Settings, to string) Result {
	if _, err := mail.ParseAddress(to); err != nil {
		return Result{Code: "invalid_recipient", Message: "Invalid recipient address: " + to}
	}
	return p.run(ctx, s, "send_test", func(d *gomail.Dialer) error {
		m := TestMessage(s, to)
		sc, err := p.open(d)
		if err != nil {
			return err
		}
		if err := gomail.Send(sc, m); err != nil {
			_ = sc.Close()
			return err
		}
		return sc.Close()
	})
}

func (p *Prober) run(ctx context.Context, s Settings, op string, fn func(*gomail.Dialer) error) Result {
	log := logger.From(ctx).With(
		logger.Component("smtpcheck"),
		logger.Op(op),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
	)
	if err := s.Validate().Err(); err != nil {
		return Result{Code: "invalid_settings", Message: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return Result{Code: "timeout", Temporary: true, Message: err.Error()}
	}

	d := p.dialer(ctx, s)
	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- fn(d) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("smtp %s: %w", op, ctx.Err())
	}
	elapsed := time.Since(start)

	if err != nil {
		diag := DiagnoseSMTP(err)
		log.Info("smtp check failed", logger.String("code", diag.Code), logger.Err(err), logger.DurationMs(elapsed))
		return Result{
			Code:       diag.Code,
			Temporary:  diag.Temporary,
			RetryAfter: diag.RetryAfter,
			Message:    err.Error(),
			DurationMs: elapsed.Milliseconds(),
		}
	}
	log.Debug("smtp check ok", logger.DurationMs(elapsed))
	msg := "Connection successful"
	if op == "send_test" {
		msg = "Test email sent"
	}
	return Result{OK: true, Message: msg, DurationMs: elapsed.Milliseconds()}
}

// TestMessage es el email de prueba estándar.
func TestMessage(s Settings, to string) *gomail.Message {
	m := gomail.NewMessage()
	if s.DisplayName != "" {
		m.SetAddressHeader("From", s.FromEmail, s.DisplayName)
	} else {
		m.SetHeader("From", s.FromEmail)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", TestSubject)
	m.SetBody("text/plain", testText)
	m.AddAlternative("text/html", TestHTML(s.Host))
	return m
}

// TestSubject es el asunto de los emails de prueba (SMTP directo o vía API).
const TestSubject = "Email EZ test email"

const testText = "This is a test email from Email EZ. If you received it, your SMTP configuration works."

// TestHTML es el cuerpo HTML de los emails de prueba.
func TestHTML(host string) string {
	return "<h2>Email EZ test email</h2>" +
		"<p>If you received this message, the configuration for <strong>" + htmlEscape(host) + "</strong> works.</p>"
}

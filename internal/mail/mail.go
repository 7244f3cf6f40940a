package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"devwrite/internal/domain/config"
)

// Message is one outgoing HTML mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender talks to an SMTP server over implicit TLS, the way port 465
// expects it.
type SMTPSender struct {
	cfg     config.MailConfig
	timeout time.Duration
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, timeout: 15 * time.Second}
}

func (s *SMTPSender) Send(msg Message) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer c.Close()

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}
	if err := c.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM failed: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp RCPT TO failed: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(compose(s.cfg.From, msg)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}
	return c.Quit()
}

func compose(from string, msg Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.HTML, "\n", "\r\n"))
	return b.Bytes()
}

// LogSender only logs. Used when no SMTP server is configured.
type LogSender struct{}

func (LogSender) Send(msg Message) error {
	log.Printf("[mail] smtp not configured, dropping %q to %s", msg.Subject, msg.To)
	return nil
}

// NewSender picks SMTP when the config has a host and a from address.
func NewSender(cfg config.MailConfig) Sender {
	if cfg.Enabled() {
		return NewSMTPSender(cfg)
	}
	return LogSender{}
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<p>Hello {{.Name}},</p>

<p>Welcome to Devwrites Africa! We're thrilled to have you onboard our innovative community.</p>

<p>Join our discussions on <a href="https://discord.gg/2TDfbF3k">Discord</a>, and follow us on <a href="https://twitter.com/devwritesafrica">Twitter</a> for updates. Let's engage, learn, and grow together! 🚀</p>

<p>Thank you,</p>
<p>{{.Signoff}}</p>
`))

// Welcome builds the welcome mail for a new member.
func Welcome(cfg config.MailConfig, to, name string) (Message, error) {
	var b bytes.Buffer
	err := welcomeTmpl.Execute(&b, struct{ Name, Signoff string }{name, cfg.Signoff})
	if err != nil {
		return Message{}, fmt.Errorf("render welcome mail: %w", err)
	}
	return Message{To: to, Subject: cfg.Subject, HTML: b.String()}, nil
}

// SendWelcome renders and sends the welcome mail.
func SendWelcome(s Sender, cfg config.MailConfig, to, name string) error {
	msg, err := Welcome(cfg, to, name)
	if err != nil {
		return err
	}
	if err := s.Send(msg); err != nil {
		return err
	}
	log.Printf("[mail] welcome mail sent to %s", to)
	return nil
}

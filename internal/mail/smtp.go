package mail

import (
	"context"
	"crypto/tls"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/pragerfoto/mentor-order-api/internal/order"
)

// SMTPConfirmation is the canonical confirmation shown after a successful
// direct SMTP handoff.
const SMTPConfirmation = "Köszönjük a megrendelést! A részleteket emailben egyeztetjük."

// SMTPConfig configures the direct SMTP transport.
type SMTPConfig struct {
	// Addr is the server address in host:port form.
	Addr string
	From string
	To   string
	// Username and Password enable PLAIN auth when non-empty.
	Username string
	Password string
}

// SMTPRelay delivers orders as plain-text email over SMTP. It is the
// server-side counterpart of the form's original mail-client handoff.
type SMTPRelay struct {
	cfg  SMTPConfig
	host string
}

// NewSMTPRelay validates the configuration and returns the relay.
func NewSMTPRelay(cfg SMTPConfig) (*SMTPRelay, error) {
	host, _, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return nil, &order.ConfigurationError{Detail: "SMTP address must be host:port: " + err.Error()}
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, &order.ConfigurationError{Detail: "mail sender and recipient must be configured"}
	}
	if _, err := mail.ParseAddress(cfg.From); err != nil {
		return nil, &order.ConfigurationError{Detail: "invalid sender address: " + err.Error()}
	}
	return &SMTPRelay{cfg: cfg, host: host}, nil
}

// Send dials the SMTP server and submits the rendered order. Connection
// failures are TransportErrors; rejections after the session is established
// are RelayErrors surfaced with the generic user-facing message.
func (r *SMTPRelay) Send(ctx context.Context, o *order.Order) (*order.Receipt, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", r.cfg.Addr)
	if err != nil {
		return nil, &order.TransportError{Err: err}
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, r.host)
	if err != nil {
		_ = conn.Close()
		return nil, &order.TransportError{Err: err}
	}
	defer func() { _ = c.Close() }()

	if r.cfg.Username != "" {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: r.host}); err != nil {
				return nil, &order.TransportError{Err: err}
			}
		}
		auth := smtp.PlainAuth("", r.cfg.Username, r.cfg.Password, r.host)
		if err := c.Auth(auth); err != nil {
			return nil, &order.RelayError{Message: ""}
		}
	}

	from, err := mail.ParseAddress(r.cfg.From)
	if err != nil {
		return nil, &order.ConfigurationError{Detail: "invalid sender address: " + err.Error()}
	}

	if err := c.Mail(from.Address); err != nil {
		return nil, &order.RelayError{Message: ""}
	}
	if err := c.Rcpt(r.cfg.To); err != nil {
		return nil, &order.RelayError{Message: ""}
	}

	w, err := c.Data()
	if err != nil {
		return nil, &order.RelayError{Message: ""}
	}
	if _, err := w.Write(r.message(o)); err != nil {
		_ = w.Close()
		return nil, &order.TransportError{Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &order.RelayError{Message: ""}
	}

	if err := c.Quit(); err != nil {
		return nil, &order.TransportError{Err: err}
	}

	return &order.Receipt{Message: SMTPConfirmation}, nil
}

// message assembles the RFC 5322 message with an encoded subject and the
// plain-text body.
func (r *SMTPRelay) message(o *order.Order) []byte {
	subject := mime.QEncoding.Encode("utf-8", "Új megrendelés: "+o.Draft.CustomerName)

	var b strings.Builder
	b.WriteString("From: " + r.cfg.From + "\r\n")
	b.WriteString("To: " + r.cfg.To + "\r\n")
	if o.Draft.CustomerEmail != "" {
		b.WriteString("Reply-To: " + o.Draft.CustomerEmail + "\r\n")
	}
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(TextBody(o), "\n", "\r\n"))
	return []byte(b.String())
}

package mail

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/pragerfoto/mentor-order-api/internal/order"
)

// resendEndpoint is the Resend transactional email API.
const resendEndpoint = "https://api.resend.com/emails"

// ResendConfirmation is the canonical confirmation shown after a successful
// server-relayed send.
const ResendConfirmation = "Köszönjük a megrendelést! Visszaigazoló emailt küldtünk, hamarosan felvesszük veled a kapcsolatot."

// ResendConfig configures the Resend transport.
type ResendConfig struct {
	// APIKey is the server-side secret. Its absence is a fatal configuration
	// error; the detail never reaches end users.
	APIKey string
	// From must be a sender on a domain verified in the Resend account.
	From string
	// To receives the order notification.
	To string
	// Endpoint overrides the API URL, for tests. Empty means production.
	Endpoint string
	// Client overrides the HTTP client. Nil means http.DefaultClient.
	Client *http.Client
}

// ResendRelay delivers orders through the Resend HTTP API.
type ResendRelay struct {
	cfg    ResendConfig
	client *http.Client
}

// NewResendRelay validates the configuration and returns the relay.
func NewResendRelay(cfg ResendConfig) (*ResendRelay, error) {
	if cfg.APIKey == "" {
		return nil, &order.ConfigurationError{Detail: "RESEND_API_KEY is not set"}
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, &order.ConfigurationError{Detail: "mail sender and recipient must be configured"}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = resendEndpoint
	}
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &ResendRelay{cfg: cfg, client: client}, nil
}

// Send posts the rendered order email to Resend. A non-2xx status becomes a
// RelayError carrying the upstream message when one was supplied; network
// failures become TransportErrors. Both leave the order resubmittable.
func (r *ResendRelay) Send(ctx context.Context, o *order.Order) (*order.Receipt, error) {
	body := r.encodePayload(o)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build resend request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &order.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &order.TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &order.RelayError{
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(data),
		}
	}

	return &order.Receipt{Message: ResendConfirmation}, nil
}

// encodePayload builds the Resend request body.
func (r *ResendRelay) encodePayload(o *order.Order) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("from")
	e.Str(r.cfg.From)
	e.FieldStart("to")
	e.ArrStart()
	e.Str(r.cfg.To)
	e.ArrEnd()
	e.FieldStart("reply_to")
	e.Str(o.Draft.CustomerEmail)
	e.FieldStart("subject")
	e.Str("Új mentorálás megrendelés: " + o.Draft.CustomerName)
	e.FieldStart("html")
	e.Str(HTMLBody(o))
	e.ObjEnd()
	return e.Bytes()
}

// upstreamMessage extracts the "message" field from a Resend error body.
// It returns "" when the body is not JSON or carries no message.
func upstreamMessage(data []byte) string {
	var msg string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "message" {
			return d.Skip()
		}
		s, err := d.Str()
		if err != nil {
			return err
		}
		msg = s
		return nil
	}); err != nil {
		return ""
	}
	return msg
}

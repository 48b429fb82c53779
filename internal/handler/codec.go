package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/pragerfoto/mentor-order-api/internal/catalog"
	"github.com/pragerfoto/mentor-order-api/internal/order"
	"github.com/pragerfoto/mentor-order-api/internal/pricing"
)

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer func() { _ = r.Body.Close() }()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("success")
	e.Bool(false)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, e.Bytes())
}

// quoteRequest is the body of POST /quote.
type quoteRequest struct {
	Selected     []catalog.Service
	Participants int
}

func decodeQuoteRequest(data []byte) (quoteRequest, error) {
	req := quoteRequest{Participants: 1}
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "selectedServices":
			return d.Arr(func(d *jx.Decoder) error {
				s, err := d.Str()
				if err != nil {
					return err
				}
				req.Selected = append(req.Selected, catalog.Service(s))
				return nil
			})
		case "participantCount":
			n, err := d.Int()
			if err != nil {
				return err
			}
			req.Participants = n
			return nil
		default:
			return d.Skip()
		}
	})
	return req, err
}

// decodeDraft parses a full order draft. Unknown keys are skipped; absent
// keys keep the fresh-draft defaults.
func decodeDraft(data []byte) (order.Draft, error) {
	draft := order.NewDraft()
	d := jx.DecodeBytes(data)

	str := func(d *jx.Decoder, dst *string) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		*dst = s
		return nil
	}
	boolean := func(d *jx.Decoder, dst *bool) error {
		b, err := d.Bool()
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "customerName":
			return str(d, &draft.CustomerName)
		case "customerEmail":
			return str(d, &draft.CustomerEmail)
		case "customerPhone":
			return str(d, &draft.CustomerPhone)
		case "billingName":
			return str(d, &draft.BillingName)
		case "billingTaxNumber":
			return str(d, &draft.BillingTaxNumber)
		case "billingZip":
			return str(d, &draft.BillingZip)
		case "billingCity":
			return str(d, &draft.BillingCity)
		case "billingAddress":
			return str(d, &draft.BillingAddress)
		case "participantCount":
			n, err := d.Int()
			if err != nil {
				return err
			}
			draft.ParticipantCount = n
			return nil
		case "selectedServices":
			return d.Arr(func(d *jx.Decoder) error {
				s, err := d.Str()
				if err != nil {
					return err
				}
				draft.Select(catalog.Service(s))
				return nil
			})
		case "preferredMonth":
			return str(d, &draft.PreferredMonth)
		case "notes":
			return str(d, &draft.Notes)
		case "agreedToTerms":
			return boolean(d, &draft.AgreedToTerms)
		case "newsletterSignup":
			return boolean(d, &draft.NewsletterSignup)
		case "utmParams":
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "utm_source":
					return str(d, &draft.UTM.Source)
				case "utm_campaign":
					return str(d, &draft.UTM.Campaign)
				case "utm_medium":
					return str(d, &draft.UTM.Medium)
				case "utm_term":
					return str(d, &draft.UTM.Term)
				case "utm_content":
					return str(d, &draft.UTM.Content)
				default:
					return d.Skip()
				}
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return order.Draft{}, err
	}

	draft.Normalize()
	return draft, nil
}

func encodeServices(items []catalog.Item) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(string(it.ID))
		e.FieldStart("name")
		e.Str(it.Name)
		e.FieldStart("description")
		e.Str(it.Description)
		e.FieldStart("priceSingle")
		e.Float64(it.PriceSingle.InexactFloat64())
		e.FieldStart("priceDouble")
		if it.PriceDouble != nil {
			e.Float64(it.PriceDouble.InexactFloat64())
		} else {
			e.Null()
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

func encodeQuoteFields(e *jx.Encoder, q pricing.Quote) {
	e.FieldStart("baseTotal")
	e.Float64(q.BaseTotal.InexactFloat64())
	e.FieldStart("discounts")
	e.ArrStart()
	for _, line := range q.Discounts {
		e.ObjStart()
		e.FieldStart("label")
		e.Str(line.Label)
		e.FieldStart("amount")
		e.Float64(line.Amount.InexactFloat64())
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("finalTotal")
	e.Float64(q.FinalTotal.InexactFloat64())
}

func encodeQuote(q pricing.Quote, participants int) []byte {
	var e jx.Encoder
	e.ObjStart()
	encodeQuoteFields(&e, q)
	e.FieldStart("participantCount")
	e.Int(participants)
	e.ObjEnd()
	return e.Bytes()
}

func encodeFieldErrors(errs order.Errors) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("success")
	e.Bool(false)
	e.FieldStart("message")
	e.Str("Kérjük, javítsd a megjelölt mezőket.")
	e.FieldStart("fieldErrors")
	e.ObjStart()
	for _, field := range errs.SortedFields() {
		e.FieldStart(field)
		e.Str(errs[field])
	}
	e.ObjEnd()
	e.ObjEnd()
	return e.Bytes()
}

func encodeOrderResult(res *order.Result) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("success")
	e.Bool(true)
	e.FieldStart("message")
	e.Str(res.Message)
	e.FieldStart("reference")
	e.Str(res.Order.Reference)
	e.FieldStart("quote")
	e.ObjStart()
	encodeQuoteFields(&e, res.Order.Quote)
	e.ObjEnd()
	e.ObjEnd()
	return e.Bytes()
}

// Package order holds the in-progress order draft, its validation rules, and
// the submitter that drives a draft through the send lifecycle.
package order

import (
	"slices"

	"github.com/pragerfoto/mentor-order-api/internal/catalog"
)

// DefaultPreferredMonth seeds the redemption-period field of a fresh draft.
const DefaultPreferredMonth = "Rugalmas, egyeztetés alapján"

// UTMParams carries the tracking parameters captured once at page load.
// Empty fields were absent from the query string and are omitted downstream,
// never defaulted to empty strings in the outgoing payload.
type UTMParams struct {
	Source   string `json:"utm_source,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Term     string `json:"utm_term,omitempty"`
	Content  string `json:"utm_content,omitempty"`
}

// Any reports whether at least one tracking parameter is present.
func (u UTMParams) Any() bool {
	return u.Source != "" || u.Campaign != "" || u.Medium != "" || u.Term != "" || u.Content != ""
}

// Draft is the editable order before submission. A draft is owned by a single
// form session and discarded on navigation away or successful submission.
type Draft struct {
	CustomerName  string `json:"customerName"  validate:"notblank"`
	CustomerEmail string `json:"customerEmail" validate:"notblank,form_email"`
	CustomerPhone string `json:"customerPhone"`

	BillingName      string `json:"billingName"    validate:"notblank"`
	BillingTaxNumber string `json:"billingTaxNumber"`
	BillingZip       string `json:"billingZip"     validate:"notblank"`
	BillingCity      string `json:"billingCity"    validate:"notblank"`
	BillingAddress   string `json:"billingAddress" validate:"notblank"`

	ParticipantCount int `json:"participantCount"`
	// SelectedServices is a set; insertion order is preserved for display.
	SelectedServices []catalog.Service `json:"selectedServices" validate:"min=1"`

	PreferredMonth   string `json:"preferredMonth"`
	Notes            string `json:"notes"`
	AgreedToTerms    bool   `json:"agreedToTerms" validate:"eq=true"`
	NewsletterSignup bool   `json:"newsletterSignup"`

	UTM UTMParams `json:"utmParams"`
}

// NewDraft returns an empty draft with the initial form defaults.
func NewDraft() Draft {
	return Draft{
		ParticipantCount: 1,
		PreferredMonth:   DefaultPreferredMonth,
	}
}

// Select adds a service to the selection. Selecting an already-selected
// service is a no-op, keeping set semantics.
func (d *Draft) Select(id catalog.Service) {
	if !slices.Contains(d.SelectedServices, id) {
		d.SelectedServices = append(d.SelectedServices, id)
	}
	d.Normalize()
}

// Deselect removes a service from the selection.
func (d *Draft) Deselect(id catalog.Service) {
	d.SelectedServices = slices.DeleteFunc(d.SelectedServices, func(s catalog.Service) bool {
		return s == id
	})
}

// SetParticipants changes the participant count and re-applies the
// single-participant restriction.
func (d *Draft) SetParticipants(n int) {
	d.ParticipantCount = n
	d.Normalize()
}

// Normalize enforces draft invariants: the participant count is clamped to
// {1, 2}, and drops back to 1 the moment any selected service lacks a
// two-participant price.
func (d *Draft) Normalize() {
	if d.ParticipantCount != 2 {
		d.ParticipantCount = 1
	}
	if d.ParticipantCount == 2 && d.hasSingleOnlySelection() {
		d.ParticipantCount = 1
	}
}

func (d *Draft) hasSingleOnlySelection() bool {
	for _, id := range d.SelectedServices {
		it, err := catalog.ByID(id)
		if err != nil {
			continue
		}
		if it.SingleOnly() {
			return true
		}
	}
	return false
}

// Selected resolves the selection against the catalog, preserving order.
func (d Draft) Selected() ([]catalog.Item, error) {
	return catalog.Resolve(d.SelectedServices)
}

package models

import (
	"time"
)

// ConsultationType describes how a consultation took place.
type ConsultationType string

const (
	ConsultationInPerson  ConsultationType = "IN_PERSON"
	ConsultationOnline    ConsultationType = "ONLINE"
	ConsultationPhoneCall ConsultationType = "PHONE_CALL"
	ConsultationOther     ConsultationType = "OTHER"
)

// ParseConsultationType rejects unknown names.
func ParseConsultationType(s string) (ConsultationType, bool) {
	switch t := ConsultationType(s); t {
	case ConsultationInPerson, ConsultationOnline, ConsultationPhoneCall, ConsultationOther:
		return t, true
	default:
		return "", false
	}
}

// DateLayout is the wire and storage layout of consultation dates.
const DateLayout = "2006-01-02"

// MaxAttachments is the most attachments a history item may reference.
const MaxAttachments = 10

// ClientHistoryItem records one consultation held by a provider.
type ClientHistoryItem struct {
	ID               string
	ProviderID       string
	PatientID        string
	PatientName      string
	ConsultationDate time.Time
	ConsultationType ConsultationType
	Notes            string
	Attachments      []string
	Synced           bool
}

func (c ClientHistoryItem) GetID() string      { return c.ID }
func (c ClientHistoryItem) GetOwnerID() string { return c.ProviderID }
func (c ClientHistoryItem) IsSynced() bool     { return c.Synced }

// Date truncates t to a UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateClientHistoryItem checks c against now. It returns nil or a *ValidationError.
func ValidateClientHistoryItem(c ClientHistoryItem, now time.Time) error {
	var problems []string
	if c.ID == "" {
		problems = append(problems, "id is required")
	}
	if c.ProviderID == "" {
		problems = append(problems, "provider id is required")
	}
	if c.PatientID == "" {
		problems = append(problems, "patient id is required")
	}
	if c.PatientName == "" {
		problems = append(problems, "patient name is required")
	}
	if Date(c.ConsultationDate).Before(Date(now).AddDate(-100, 0, 0)) {
		problems = append(problems, "consultation date is too old")
	}
	if _, ok := ParseConsultationType(string(c.ConsultationType)); !ok {
		problems = append(problems, "invalid consultation type")
	}
	if len(c.Attachments) > MaxAttachments {
		problems = append(problems, "maximum 10 attachments allowed")
	}
	return asError(problems)
}

// ToDocument renders c in wire form. The synced flag is never sent.
func (c ClientHistoryItem) ToDocument() Document {
	attachments := c.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return Document{
		"id":               c.ID,
		"providerId":       c.ProviderID,
		"patientId":        c.PatientID,
		"patientName":      c.PatientName,
		"consultationDate": c.ConsultationDate.Format(DateLayout),
		"consultationType": string(c.ConsultationType),
		"notes":            c.Notes,
		"attachments":      toAnyList(attachments),
	}
}

// ClientHistoryItemFromDocument decodes a remote document. The consultation
// date may be an ISO date string or epoch seconds.
func ClientHistoryItemFromDocument(doc Document) (ClientHistoryItem, error) {
	var (
		c   ClientHistoryItem
		err error
	)
	if c.ID, err = requiredString(doc, "id"); err != nil {
		return ClientHistoryItem{}, err
	}
	if c.ProviderID, err = optionalString(doc, "providerId"); err != nil {
		return ClientHistoryItem{}, err
	}
	if c.PatientID, err = optionalString(doc, "patientId"); err != nil {
		return ClientHistoryItem{}, err
	}
	if c.PatientName, err = optionalString(doc, "patientName"); err != nil {
		return ClientHistoryItem{}, err
	}
	if c.Notes, err = optionalString(doc, "notes"); err != nil {
		return ClientHistoryItem{}, err
	}
	if c.Attachments, err = stringList(doc, "attachments"); err != nil {
		return ClientHistoryItem{}, err
	}
	if c.ConsultationDate, err = consultationDate(doc); err != nil {
		return ClientHistoryItem{}, err
	}

	typ, err := requiredString(doc, "consultationType")
	if err != nil {
		return ClientHistoryItem{}, err
	}
	t, ok := ParseConsultationType(typ)
	if !ok {
		return ClientHistoryItem{}, decodeErr("consultationType", "unknown value %q", typ)
	}
	c.ConsultationType = t

	return c, nil
}

func consultationDate(doc Document) (time.Time, error) {
	const field = "consultationDate"
	if s, ok := doc[field].(string); ok {
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			return time.Time{}, decodeErr(field, "bad date %q", s)
		}
		return d, nil
	}
	secs, ok, err := number(doc, field)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, decodeErr(field, "missing")
	}
	return Date(time.Unix(secs, 0).UTC()), nil
}

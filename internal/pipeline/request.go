package pipeline

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// Request is one inbound action invocation: the authenticated principal, the
// target record id (uuid.Nil for create actions) and the raw submitted field
// map as the presentation collaborator delivered it.
type Request struct {
	Principal domain.Principal
	ID        uuid.UUID
	Fields    map[string]string
}

// NewRequest builds a request. A nil field map is normalised to empty.
func NewRequest(p domain.Principal, id uuid.UUID, fields map[string]string) *Request {
	if fields == nil {
		fields = map[string]string{}
	}
	return &Request{Principal: p, ID: id, Fields: fields}
}

// Has reports whether the field was submitted at all.
func (r *Request) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// timeLayouts are accepted submitted date formats, most specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// Form reads submitted fields with type conversion, recording every
// conversion failure in the action's error set. Bind steps therefore never
// fail: an unparsable field leaves the entity's prior value in place and the
// field flagged, exactly like a missing field plus an inline error.
type Form struct {
	req  *Request
	errs *ErrorSet
}

// NewForm wraps a request and an error set for binding.
func NewForm(req *Request, errs *ErrorSet) *Form {
	return &Form{req: req, errs: errs}
}

// String returns the submitted value and whether the field was present.
func (f *Form) String(key string) (string, bool) {
	v, ok := f.req.Fields[key]
	return v, ok
}

// Time parses a submitted date. Returns false when missing or unparsable;
// parse failures are recorded as "invalid-date".
func (f *Form) Time(key string) (time.Time, bool) {
	raw, ok := f.req.Fields[key]
	if !ok || raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	f.errs.Add(key, "invalid-date")
	return time.Time{}, false
}

// Money parses a submitted "<amount> <currency>" value.
// Parse failures are recorded as "invalid-money".
func (f *Form) Money(key string) (domain.Money, bool) {
	raw, ok := f.req.Fields[key]
	if !ok || raw == "" {
		return domain.Money{}, false
	}
	m, err := domain.ParseMoney(raw)
	if err != nil {
		f.errs.Add(key, "invalid-money")
		return domain.Money{}, false
	}
	return m, true
}

// Decimal parses a submitted decimal number.
// Parse failures are recorded as "invalid-number".
func (f *Form) Decimal(key string) (decimal.Decimal, bool) {
	raw, ok := f.req.Fields[key]
	if !ok || raw == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		f.errs.Add(key, "invalid-number")
		return decimal.Decimal{}, false
	}
	return d, true
}

// Float parses a submitted floating point number.
// Parse failures are recorded as "invalid-number".
func (f *Form) Float(key string) (float64, bool) {
	raw, ok := f.req.Fields[key]
	if !ok || raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.errs.Add(key, "invalid-number")
		return 0, false
	}
	return v, true
}

// UUID parses a submitted record reference.
// Parse failures are recorded as "invalid-reference".
func (f *Form) UUID(key string) (uuid.UUID, bool) {
	raw, ok := f.req.Fields[key]
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		f.errs.Add(key, "invalid-reference")
		return uuid.Nil, false
	}
	return id, true
}

// Package attendee turns one user-supplied search criterion into backend
// lookups and decides whether an attendee was found.
//
// A search takes exactly one of a QR payload, phone, email or full name. QR
// payloads are parsed with the contact package; when the QR phone misses, the
// email from the same payload is tried once.
package attendee

import (
	"context"
	"strings"

	"github.com/fairdesk/fairdesk/internal/domain/contact"
)

// SearchType names the branch that produced the primary query.
type SearchType string

// Search types, in precedence order.
const (
	SearchDirectPhone SearchType = "direct phone"
	SearchDirectEmail SearchType = "direct email"
	SearchQRPhone     SearchType = "qr phone"
	SearchQREmail     SearchType = "qr email"
	SearchDirectName  SearchType = "direct name"
)

// Criterion is what the caller searched with. Exactly one field must be
// non-blank.
type Criterion struct {
	QRPayload string
	Phone     string
	Email     string
	FullName  string
}

// Query is what gets sent to the backend. At most one field is populated.
type Query struct {
	Phone    string
	Email    string
	FullName string
}

// Record is the attendee object returned by the backend. Its contents are
// passed through untouched.
type Record map[string]any

// Found reports whether r is a usable match: a non-empty object not flagged
// with success=false.
func (r Record) Found() bool {
	if len(r) == 0 {
		return false
	}
	if ok, present := r["success"].(bool); present && !ok {
		return false
	}
	return true
}

// Lookup is the backend operation the resolver depends on. It returns an
// empty record (not an error) when nothing matched; errors are reserved for
// transport and server failures.
type Lookup interface {
	FindAttendee(ctx context.Context, q Query) (Record, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, q Query) (Record, error)

// FindAttendee calls f.
func (f LookupFunc) FindAttendee(ctx context.Context, q Query) (Record, error) {
	return f(ctx, q)
}

// Result describes a successful resolution.
type Result struct {
	Record       Record
	SearchType   SearchType
	UsedFallback bool
	Attempts     int
}

// Plan is the outcome of criterion selection: the primary query and the
// optional fallback email.
type Plan struct {
	SearchType    SearchType
	Query         Query
	FallbackEmail string
}

// Resolver resolves criteria against a Lookup. It holds no per-request state.
type Resolver struct {
	lookup Lookup
}

// NewResolver returns a Resolver backed by lookup.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Validate checks that exactly one field of c is non-blank.
func (c Criterion) Validate() error {
	filled := 0
	for _, v := range []string{c.QRPayload, c.Phone, c.Email, c.FullName} {
		if !isBlank(v) {
			filled++
		}
	}
	switch {
	case filled == 0:
		return &ValidationError{Message: MsgNoCriterion}
	case filled > 1:
		return &ValidationError{Message: MsgTooManyCriteria}
	}
	return nil
}

// PlanFor validates c and picks the primary query. It performs no I/O.
func PlanFor(c Criterion) (Plan, error) {
	if err := c.Validate(); err != nil {
		return Plan{}, err
	}

	var extracted contact.Contact
	if !isBlank(c.QRPayload) {
		extracted = contact.Extract(c.QRPayload)
	}

	switch {
	case !isBlank(c.Phone):
		// Phone and QR payload are mutually exclusive after Validate, so
		// extracted is always empty here and no fallback is ever set.
		return Plan{
			SearchType:    SearchDirectPhone,
			Query:         Query{Phone: strings.TrimSpace(c.Phone)},
			FallbackEmail: extracted.Email,
		}, nil
	case !isBlank(c.Email):
		return Plan{SearchType: SearchDirectEmail, Query: Query{Email: strings.TrimSpace(c.Email)}}, nil
	case extracted.Phone != "":
		return Plan{
			SearchType:    SearchQRPhone,
			Query:         Query{Phone: extracted.Phone},
			FallbackEmail: extracted.Email,
		}, nil
	case extracted.Email != "":
		return Plan{SearchType: SearchQREmail, Query: Query{Email: extracted.Email}}, nil
	case !isBlank(c.FullName):
		return Plan{SearchType: SearchDirectName, Query: Query{FullName: strings.TrimSpace(c.FullName)}}, nil
	}
	return Plan{}, &ValidationError{Message: MsgNoUsableQRSignal}
}

// Resolve runs the primary lookup and, when a QR-derived phone missed and the
// same payload carried an email, one fallback lookup by that email.
//
// It returns *ValidationError before any backend call, ErrNotFound when every
// attempt came back empty, and *BackendError when a lookup failed.
func (r *Resolver) Resolve(ctx context.Context, c Criterion) (Result, error) {
	plan, err := PlanFor(c)
	if err != nil {
		return Result{}, err
	}

	res := Result{SearchType: plan.SearchType}

	rec, err := r.lookup.FindAttendee(ctx, plan.Query)
	res.Attempts++
	if err != nil {
		return res, &BackendError{SearchType: plan.SearchType, Err: err}
	}
	if rec.Found() {
		res.Record = rec
		return res, nil
	}

	if plan.FallbackEmail == "" || plan.Query.Phone == "" {
		return res, ErrNotFound
	}

	rec, err = r.lookup.FindAttendee(ctx, Query{Email: plan.FallbackEmail})
	res.Attempts++
	res.UsedFallback = true
	if err != nil {
		return res, &BackendError{SearchType: plan.SearchType, Err: err}
	}
	if rec.Found() {
		res.Record = rec
		return res, nil
	}
	return res, ErrNotFound
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

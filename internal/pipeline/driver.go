// Package pipeline implements the uniform action lifecycle every user-facing
// operation goes through: authorise → load → bind → validate → perform →
// unbind. Each (entity, action) pair supplies a Handler; Run drives the
// fixed stage sequence and owns the short-circuit rules, so handlers stay
// plain data-and-functions units with no control flow of their own.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// Handler is one entity-action unit. E is the entity type flowing through the
// stages.
//
// Authorise resolves the target and its owner chain and fails closed; it must
// not have side effects. Load fetches the persisted entity (or a fresh draft
// for create actions). Bind copies the action's whitelisted fields from the
// form onto the entity; conversion failures land in the form's error set and
// leave prior values untouched. Validate runs the business rules against the
// error set; its error return is for query-layer failures only. Perform
// persists and returns the entity as written (publish actions flip the draft
// flag here); it runs only when the error set is empty. Unbind produces the
// re-display dataset and runs regardless of validation outcome.
type Handler[E any] interface {
	Authorise(ctx context.Context, req *Request) (bool, error)
	Load(ctx context.Context, req *Request) (E, error)
	Bind(req *Request, form *Form, entity E) E
	Validate(ctx context.Context, entity E, errs *ErrorSet) error
	Perform(ctx context.Context, entity E) (E, error)
	Unbind(ctx context.Context, entity E) (Dataset, error)
}

// Status is the overall outcome of an action run.
type Status int

const (
	// StatusOK: validation passed and the perform step ran.
	StatusOK Status = iota
	// StatusInvalid: field errors were recorded; perform was skipped.
	StatusInvalid
	// StatusForbidden: authorisation failed; nothing after it ran.
	StatusForbidden
)

// Result is what the caller renders: the outcome, the re-display dataset and
// any field errors. Dataset and Errors are nil for forbidden outcomes.
type Result struct {
	Status  Status
	Dataset Dataset
	Errors  *ErrorSet
}

// TxRunner scopes the load-bind-validate-perform section of a run to a single
// transaction, so validation reads and the write observe one snapshot. The
// postgres TxManager satisfies it.
type TxRunner interface {
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

type options struct {
	tx TxRunner
}

// Option configures a Run invocation.
type Option func(*options)

// InTx wraps everything after authorisation in one serializable transaction.
// Actions whose validation aggregates over sibling records need this: without
// it two concurrent runs can both validate against the same stale totals and
// jointly break the aggregate invariant.
func InTx(tx TxRunner) Option {
	return func(o *options) { o.tx = tx }
}

// Run drives a handler through the pipeline stages.
//
// Authorisation failure is fatal for the whole action: the caller gets a bare
// forbidden result. Validation failures are not: the run still unbinds so the
// form can be re-rendered with submitted values and inline errors, but the
// perform step is skipped. Infrastructure errors abort the run.
func Run[E any](ctx context.Context, h Handler[E], req *Request, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	authorised, err := h.Authorise(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Result{Status: StatusForbidden}, nil
		}
		return nil, fmt.Errorf("authorise: %w", err)
	}
	if !authorised {
		return &Result{Status: StatusForbidden}, nil
	}

	var (
		entity E
		errs   = NewErrorSet()
	)

	stages := func(ctx context.Context) error {
		entity, err = h.Load(ctx, req)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}

		entity = h.Bind(req, NewForm(req, errs), entity)

		if err := h.Validate(ctx, entity, errs); err != nil {
			return fmt.Errorf("validate: %w", err)
		}

		if errs.HasAny() {
			return nil
		}
		entity, err = h.Perform(ctx, entity)
		if err != nil {
			return fmt.Errorf("perform: %w", err)
		}
		return nil
	}

	if o.tx != nil {
		err = o.tx.RunSerializable(ctx, stages)
	} else {
		err = stages(ctx)
	}
	if err != nil {
		// The record can disappear between authorise and load; stay closed.
		if errors.Is(err, domain.ErrNotFound) {
			return &Result{Status: StatusForbidden}, nil
		}
		return nil, err
	}

	dataset, err := h.Unbind(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("unbind: %w", err)
	}

	status := StatusOK
	if errs.HasAny() {
		status = StatusInvalid
	}
	return &Result{Status: status, Dataset: dataset, Errors: errs}, nil
}

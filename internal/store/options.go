package store

import (
	"log/slog"

	"github.com/google/uuid"
)

// Op names a selection operation for logs and observers.
type Op string

const (
	// OpSelect is Store.SelectWhere (and Store.AsView).
	OpSelect Op = "select"

	// OpSelectMut is Store.SelectWhereMut (and Store.AsViewMut).
	OpSelectMut Op = "select_mut"

	// OpNarrow is View.SelectWhere.
	OpNarrow Op = "narrow"

	// OpNarrowMut is MutableView.SelectWhereMut.
	OpNarrowMut Op = "narrow_mut"
)

// Observer receives selection outcomes from a Store and the views derived
// from it. Implementations must not call back into the Store.
type Observer interface {
	// ObserveSelect is called after every successful selection.
	ObserveSelect(op Op, scanned, selected int)

	// ObserveConflict is called for every rejected operation.
	ObserveConflict(err *BorrowError)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	id       string
	logger   *slog.Logger
	observer Observer
}

// WithID overrides the generated store ID.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithLogger sets the logger used for selection and conflict logs.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver attaches an Observer.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.Must(uuid.NewV7()).String()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	return o
}

type nopObserver struct{}

func (nopObserver) ObserveSelect(Op, int, int)   {}
func (nopObserver) ObserveConflict(*BorrowError) {}

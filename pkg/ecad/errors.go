package ecad

import (
	"github.com/Draaaaaaven/ecad/pkg/errors"
)

var (
	// ErrDuplicateName is wrapped by every create and add operation that
	// collides with an existing name in the same collection. Nothing is
	// overwritten when it is returned.
	ErrDuplicateName = errors.New(errors.ErrCodeDuplicateName, "name already in use")

	// ErrNilLayoutView is returned when an operation is called on a nil
	// layout view or given a nil master layout.
	ErrNilLayoutView = errors.New(errors.ErrCodeInvalidState, "layout view is nil")

	// ErrNilDatabase is returned when a database operation is called on a
	// nil database.
	ErrNilDatabase = errors.New(errors.ErrCodeInvalidState, "database is nil")

	// ErrCyclicHierarchy is returned by [LayoutView.CreateCellInst] when the
	// instance would make a cell instantiate itself.
	ErrCyclicHierarchy = errors.New(errors.ErrCodeCyclic, "cell instance would create a cycle")

	// ErrNoBoundary is returned by [LayoutView.GenerateMetalFractionMapping]
	// when the layout has no boundary polygon.
	ErrNoBoundary = errors.New(errors.ErrCodeInvalidState, "layout boundary is not set")

	// ErrNoStackup is returned by [LayoutView.GenerateMetalFractionMapping]
	// when the layout has no stackup layers.
	ErrNoStackup = errors.New(errors.ErrCodeInvalidState, "layout stackup is empty")

	// ErrCellNotInDatabase is returned by [Database.Flatten] for a cell owned
	// by another database or by none.
	ErrCellNotInDatabase = errors.New(errors.ErrCodeNotFound, "cell does not belong to this database")
)

func duplicate(kind, name string) error {
	return errors.Wrap(errors.ErrCodeDuplicateName, ErrDuplicateName, "%s %q", kind, name)
}

func invalidInput(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}

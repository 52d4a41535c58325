package ncfile

import "errors"

// Validation and emission errors.
var (
	// ErrUnknownDimension indicates a variable referencing an undeclared dimension.
	ErrUnknownDimension = errors.New("ncfile: variable references undeclared dimension")

	// ErrDuplicateDimension indicates a dimension declared twice.
	ErrDuplicateDimension = errors.New("ncfile: duplicate dimension")

	// ErrDuplicateVariable indicates a variable declared twice.
	ErrDuplicateVariable = errors.New("ncfile: duplicate variable")

	// ErrShapeMismatch indicates variable data whose shape disagrees with
	// the declared dimension extents, or dimensions out of order.
	ErrShapeMismatch = errors.New("ncfile: variable shape disagrees with declared dimensions")

	// ErrUnknownVariable indicates a lookup of an undeclared variable.
	ErrUnknownVariable = errors.New("ncfile: unknown variable")

	// ErrBadExtent indicates a dimension with a non-positive extent.
	ErrBadExtent = errors.New("ncfile: dimension extent must be positive")

	// ErrNoVariables indicates an attempt to emit an empty dataset.
	ErrNoVariables = errors.New("ncfile: dataset has no variables")
)

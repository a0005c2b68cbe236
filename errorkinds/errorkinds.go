// Package errorkinds defines the single error taxonomy shared by the
// analyzer, planner and executor, following the teacher's pattern of typed
// error kinds (see auth.ErrNotAuthorized in the teacher repo) built on
// gopkg.in/src-d/go-errors.v1: a *errors.Kind is a reusable message
// template, instantiated per occurrence with .New(args...), and classified
// later with .Is(err).
package errorkinds

import (
	goerrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// UnknownCollection is returned when a FROM/JOIN item or qualifier names
	// a visible collection that was never bound.
	UnknownCollection = goerrors.NewKind("unknown collection %q")

	// UnknownColumn is returned when a bare or qualified column cannot be
	// resolved against any visible collection's schema. candidates lists
	// near-miss field names gathered across visible schemas.
	UnknownColumn = goerrors.NewKind("unknown column %q (candidates: %v)")

	// AmbiguousColumn is returned when a bare column resolves against more
	// than one visible collection's schema. matches lists the colliding
	// visible collection names.
	AmbiguousColumn = goerrors.NewKind("ambiguous column %q (matches: %v)")

	// NotACollection describes a FROM/JOIN item that is not a plain
	// collection reference (e.g. a subquery). Nothing in this module returns
	// it: the parser accepts only plain collection names there.
	NotACollection = goerrors.NewKind("%q is not a collection")

	// FunctionNotFound is returned when a scalar or aggregate function name
	// is not registered.
	FunctionNotFound = goerrors.NewKind("function %q not found")

	// FunctionArgMismatch is returned when a function is called with the
	// wrong arity or argument shape.
	FunctionArgMismatch = goerrors.NewKind("function %q: expected %s, got %d argument(s)")

	// NonConstInConstFold describes constant folding attempted over a
	// non-literal argument. Nothing in this module returns it: the analyzer
	// folds only when every argument is already a literal and otherwise
	// leaves the call unfolded.
	NonConstInConstFold = goerrors.NewKind("cannot constant-fold non-constant expression in %q")

	// InvalidLikePattern is returned when a LIKE pattern cannot be compiled
	// (e.g. invalid escape).
	InvalidLikePattern = goerrors.NewKind("invalid LIKE pattern %q: %s")

	// InvalidParameterValue is returned when a `?` placeholder is bound to
	// a payload shape the position does not accept (see spec §9 "Parameter
	// binding").
	InvalidParameterValue = goerrors.NewKind("invalid parameter value at position %d: %s")

	// Other wraps any other error (including a wrapped ParseError) at the
	// package boundary, per spec §6's error taxonomy.
	Other = goerrors.NewKind("%s")
)

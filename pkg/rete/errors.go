package rete

import "errors"

// ErrMalformedCondition is returned at compile time (before any
// network mutation) when a leaf construct is used where a boolean was
// expected, or a negation is applied to something other than a
// boolean connective or a positive condition.
var ErrMalformedCondition = errors.New("rete: malformed condition")

// ErrDuplicateProduction is returned by AddProduction when a rule of
// the same name is already registered.
var ErrDuplicateProduction = errors.New("rete: duplicate production name")

// ErrUnknownProduction is returned by RemoveProduction/Matches for a
// name that was never registered (or was already removed).
var ErrUnknownProduction = errors.New("rete: unknown production name")

package graph

import "errors"

var (
	// ErrNoUnits is returned when a document yields no processable
	// units, e.g. an empty file or a PDF without extractable text.
	ErrNoUnits = errors.New("document contains no processable units")

	// ErrAllUnitsFailed is returned when extraction failed for every
	// non-empty unit of a document, typically because the reasoning
	// service is unreachable.
	ErrAllUnitsFailed = errors.New("extraction failed for every unit")
)

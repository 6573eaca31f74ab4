// Package billingresp turns billing service responses into a canonical tree and answers
// entity queries over it.
//
// The service serializes collections inconsistently: a single plan may arrive as
// {"plans": {"plan": {...}}} and several as {"plans": {"plan": [{...}, {...}]}}; errors may sit at
// the root or inside the customers/plans wrapper; numbers, flags and timestamps arrive as
// strings. New normalizes all of that once:
//
//  1. keys become Key identifiers,
//  2. errors are hoisted into the root "errors" sequence,
//  3. collapsed collections become sequences,
//  4. typed fields are coerced (see Dialect).
//
// If the result is invalid (errors present or status >= 400) the raw body is re-read as XML,
// which recovers error detail from bodies the structured decoder could not handle.
//
// Single-entity accessors take an optional code. Without one they require the collection to
// hold at most one element and return ErrAmbiguousSelection otherwise.
package billingresp

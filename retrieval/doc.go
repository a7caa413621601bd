// Package retrieval assembles the grounding context for a query.
//
// Given a query embedding it runs the top-k similarity search, resolves
// the matched chunks back to their parent captures, and renders one
// bounded text block per capture together with any inlineable media.
// The caller feeds the result to the answer coordinator.
package retrieval

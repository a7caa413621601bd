// Package answer streams a generated answer as an ordered event
// sequence.
//
// Every stream carries exactly one sources event first, then zero or
// more delta events, then exactly one terminal done or error event,
// after which the stream closes. All events pass through a single send
// path so the ordering and single-terminal contract cannot be violated
// by scattered writes.
package answer

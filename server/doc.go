// Package server exposes the HTTP surface: capture ingress, upload
// signing, session lifecycle and the streaming query endpoint.
//
// Every data route runs behind the JWT middleware, which resolves the
// caller into a storage scope before any repository access. The query
// endpoint streams answer events framed as one JSON object per event,
// each terminated by a blank line; after the stream starts, failures
// become a terminal error event rather than transport errors.
package server

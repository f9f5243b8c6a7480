// Package http implements the rpc transport over plain HTTP.
//
// A request is a POST of the serialized message to /{shardId}, the response
// body carries the serialized reply. The client spreads requests round-robin
// over all endpoints and retries failed attempts until the context is done.
//
// The server also exposes GET /metrics in the prometheus text format, see
// MetricsHandler.
//
// The client transport is safe for concurrent use, the round-robin counter
// is updated atomically.
package http

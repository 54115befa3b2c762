// Package server provides HTTP routing and the metrics endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] runs in the order it is added; the first one wraps the outside.
//
// The [BasicRouter] implementation registers [http.ServeMux] method patterns, so the mux answers
// 405 for known paths requested with another method.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// so a handler owns its route definitions ("GET /health").
//
// # Metrics Server
//
// [New] builds a router serving GET /metrics from a Prometheus registry and GET /health, wrapped
// with [Logging]. [Serve] runs it until its context ends and then shuts it down.
package server

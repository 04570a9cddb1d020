// Package application provides application initialization and dependency wiring.
// It creates the container storage, the allocation solver, the Prometheus
// registry, handlers, routers and the HTTP server, keeping the main package
// focused on CLI parsing and shutdown.
package application

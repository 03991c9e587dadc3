// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Participant and activity management
//   - Registrations, deregistrations, and undo
//   - Prerequisites and the completion schedule
//   - Recent events, health checks, and Prometheus metrics
package http

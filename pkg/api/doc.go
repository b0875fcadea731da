// Package api is the HTTP front door.
//
// # Endpoints
//
//   - POST /v1/validate: parse and validate one YAML document. The
//     verdict travels in the 200 body; 400 is a broken request, 500 an
//     internal schema fault.
//   - POST /v1/diff: validate both sides, then classify the changes
//     between them. An invalid side is a 422 carrying the validation
//     messages.
//   - GET /healthz: liveness probe.
//   - GET /metrics: Prometheus exposition, when a collector is mounted.
//
// # Middleware
//
// Requests pass through request-ID assignment, completion logging,
// panic recovery and a request-body cap. Security headers (nosniff,
// frame deny, no-store) are set on every response.
//
// Spec content is never persisted by this package; the optional history
// recorder receives run summaries only.
package api

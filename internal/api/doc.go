// Package api serves the published aggregates over HTTP. Handlers parse and
// validate request parameters, run a pass through the insights service and
// translate its error kinds to status codes without leaking internal details.
package api

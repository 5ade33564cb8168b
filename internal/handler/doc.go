// Package handler implements the HTTP layer of the catalog API.
//
// The layer is deliberately thin: handlers decode the request, resolve the
// caller identity from headers, and delegate to the services with an explicit
// root id. No business rule lives here.
//
// # Identity
//
// Authentication happens upstream; an auth proxy injects the resolved
// identity as headers:
//
//	X-Identity-Subject  caller identifier, informational
//	X-Identity-Role     ADMIN or USER
//	X-Identity-Roots    comma-separated root ids assigned to a USER
//	X-Identity-Active   "false" marks a deactivated account
//
// Requests without a valid role are rejected with 401 before reaching any
// service.
//
// # Errors
//
// Service errors are mapped to status codes in one place: forbidden 403,
// not found 404, conflict 409, validation and legality failures 422,
// everything else 500. Error responses are JSON with {error, details}.
package handler

// Package api implements the HTTP transport of the Ricebook client: a
// typed REST client over the backend surface, the request-header builder,
// and the error taxonomy shared by the service layer.
package api

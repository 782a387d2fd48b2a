// Package rest is the authenticated HTTP transport for the platform's
// REST API. It exposes the four verbs the rest of the library consumes
// and owns the base URL and bot-token bearer auth. Everything above it
// talks to the API interface so tests can substitute a fake transport.
package rest

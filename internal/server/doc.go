// Package server exposes a tweet card generator over HTTP with gin.
//
// Routes:
//
//	POST /api/generate-tweet   render a card, respond with image/png
//	GET  /api/generate-tweet   status payload
//	GET  /health               status payload
//
// Render failures are reported as a generic 500; the cause is only logged,
// tagged with the request id.
package server

// Package http serves the manual API over net/http.
//
// Procedures mount under /api/{name}. Queries accept GET with an optional
// ?input=<json> parameter or POST, mutations accept POST with a JSON body:
//   - manual.*: categories, items, images, search, rendering
//   - files.*: listing, download URLs, deletion
//   - auth.me: the signed in user
//
// Plain routes cover the rest:
//   - POST /files/upload (multipart form, field "file")
//   - GET /files/{id}
//   - GET /metrics
//   - GET /healthz
package http

// Package api provides the HTTP REST API and WebSocket server for Haven
// Core.
//
// It exposes room, device, scene and automation-rule operations plus a
// live dashboard event feed. Every resource route is JWT-authenticated;
// the caller's user ID is resolved into the request context and every
// repository call is scoped to it.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

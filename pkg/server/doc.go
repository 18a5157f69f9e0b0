// Package server exposes the desktops of a session hub over HTTP.
//
// The API is a chi router under /api/v1/users/{user}; every route loads
// the user's desktop on first use. Errors are JSON bodies of the form
// {"error": "...", "code": N}: 404 for missing windows, apps and paths,
// 409 for conflicts, 400 for bad input. /health, /ready and /metrics sit
// at the root and an optional directory serves the browser front end.
//
// Example usage:
//
//	handler := server.NewHandler(hub, server.Options{StaticDir: "./web"})
//	srv := server.New(server.Config{Addr: ":8080"}, handler)
//	err := srv.Run(ctx)
package server

package structures

import "net/http"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

// Route binds a URL to per-method handlers. Handler is the dispatching
// handler built from Methods by the router.
type Route struct {
	Url     string
	Methods map[string]http.Handler
	Handler http.Handler
}

package providers

import (
	"net/http"

	"nena/internal/structures"

	json "github.com/goccy/go-json"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

type RouterProvider struct {
	routes []structures.Route
	index  map[string]int
}

func (rp *RouterProvider) add(method, url string, handler http.Handler) {
	if i, ok := rp.index[url]; ok {
		rp.routes[i].Methods[method] = handler
		return
	}
	rp.index[url] = len(rp.routes)
	rp.routes = append(rp.routes, structures.Route{
		Url:     url,
		Methods: map[string]http.Handler{method: handler},
	})
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.add(http.MethodGet, url, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.add(http.MethodPost, url, handler)
}

// GetRoutes returns one route per URL whose handler dispatches on method.
func (rp *RouterProvider) GetRoutes() []structures.Route {
	out := make([]structures.Route, len(rp.routes))
	for i, r := range rp.routes {
		r.Handler = methodHandler(r.Methods)
		out[i] = r
	}
	return out
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{index: make(map[string]int)}
}

func methodHandler(methods map[string]http.Handler) http.Handler {
	allow := ""
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		if _, ok := methods[m]; ok {
			if allow != "" {
				allow += ", "
			}
			allow += m
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := methods[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusMethodNotAllowed)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "method not allowed"})
			return
		}
		h.ServeHTTP(w, r)
	})
}

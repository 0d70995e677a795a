package routes

import (
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/bitelog/bite/internal/respond"
)

// FunctionRouter dispatches /functions/v1/{name} (or any path ending in a
// registered name) to the named handler.
type FunctionRouter struct {
	functions map[string]http.Handler
}

func NewFunctionRouter() *FunctionRouter {
	return &FunctionRouter{functions: make(map[string]http.Handler)}
}

func (fr *FunctionRouter) Register(name string, h http.Handler) {
	fr.functions[name] = h
}

// Names returns the registered function names in sorted order.
func (fr *FunctionRouter) Names() []string {
	names := make([]string, 0, len(fr.functions))
	for name := range fr.functions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (fr *FunctionRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Base(strings.TrimRight(r.URL.Path, "/"))

	h, ok := fr.functions[name]
	if !ok {
		respond.JSON(w, http.StatusNotFound, respond.ErrorBody{
			Error:     "Function not found",
			Available: fr.Names(),
		})
		return
	}

	h.ServeHTTP(w, r)
}

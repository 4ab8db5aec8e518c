package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/splitter"
)

var isKind = regexp.MustCompile(`^[a-z][a-z0-9_]{2,31}$`).MatchString

// Constructor binds code of a single kind to an account address.
type Constructor func(h *Host, addr splitter.Address) splitter.Contract

// router maps code kinds to their constructors.
type router struct {
	kinds map[string]Constructor
}

func newRouter() *router {
	return &router{kinds: make(map[string]Constructor)}
}

// add registers a constructor for given kind. It panics if the kind is
// malformed or was already registered.
func (r *router) add(kind string, ctor Constructor) {
	if !isKind(kind) {
		panic(fmt.Sprintf("illegal code kind: %q", kind))
	}
	if ctor == nil {
		panic(fmt.Sprintf("nil constructor for %q", kind))
	}
	if _, ok := r.kinds[kind]; ok {
		panic(fmt.Sprintf("code kind %q already registered", kind))
	}
	r.kinds[kind] = ctor
}

func (r *router) route(kind string) (Constructor, bool) {
	ctor, ok := r.kinds[kind]
	return ctor, ok
}

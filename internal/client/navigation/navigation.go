// Package navigation turns auth operation results into screen changes.
package navigation

import (
	"sync"

	"github.com/dmitrijs2005/campushub/internal/client/services"
)

// Default screen paths.
const (
	EntryPath = "/"
	AuthPath  = "/home"
)

// Navigator replaces the current screen. It keeps no back stack entry for
// the replaced screen.
type Navigator interface {
	Replace(path string)
}

// Router is a services.Observer. A successful sign-in goes to the
// authenticated area; any sign-out, failed or not, goes back to the entry
// screen. Everything else leaves the screen alone.
type Router struct {
	nav       Navigator
	entryPath string
	authPath  string
}

func NewRouter(nav Navigator, entryPath, authPath string) *Router {
	if entryPath == "" {
		entryPath = EntryPath
	}
	if authPath == "" {
		authPath = AuthPath
	}
	return &Router{nav: nav, entryPath: entryPath, authPath: authPath}
}

var _ services.Observer = (*Router)(nil)

func (r *Router) Observe(res services.Result) {
	switch res.Outcome {
	case services.OutcomeSignedIn:
		if res.Err == nil {
			r.nav.Replace(r.authPath)
		}
	case services.OutcomeSignedOut:
		r.nav.Replace(r.entryPath)
	}
}

// History is an in-memory Navigator for the terminal client. It records
// every replacement so the CLI can show where the user is.
type History struct {
	mu      sync.Mutex
	current string
	visits  []string
}

func NewHistory(start string) *History {
	return &History{current: start}
}

func (h *History) Replace(path string) {
	h.mu.Lock()
	h.current = path
	h.visits = append(h.visits, path)
	h.mu.Unlock()
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Visits returns the replacements made so far, oldest first.
func (h *History) Visits() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.visits...)
}

package driven

import (
	"context"
	"errors"
	"net/http"
)

// ErrNoSession is returned by a SessionProvider when the request carries no
// usable principal.
var ErrNoSession = errors.New("no authenticated session")

// SessionProvider resolves the authenticated principal of a request. The
// ledger trusts the returned ID; authentication itself happens upstream.
type SessionProvider interface {
	PrincipalID(r *http.Request) (int64, error)
}

// Pinger reports store readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

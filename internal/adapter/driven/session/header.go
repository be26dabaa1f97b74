// Package session resolves the authenticated principal of an HTTP request.
// Authentication happens upstream; these providers only read its result.
package session

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// DefaultHeader carries the principal ID set by a trusted upstream proxy.
const DefaultHeader = "X-Principal-ID"

var _ driven.SessionProvider = (*HeaderProvider)(nil)

// HeaderProvider reads the principal ID from a request header.
type HeaderProvider struct {
	header string
}

// NewHeaderProvider creates a HeaderProvider. An empty header name falls back
// to DefaultHeader.
func NewHeaderProvider(header string) *HeaderProvider {
	if header == "" {
		header = DefaultHeader
	}
	return &HeaderProvider{header: header}
}

// PrincipalID returns the positive integer in the configured header.
func (p *HeaderProvider) PrincipalID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(p.header))
	if raw == "" {
		return 0, driven.ErrNoSession
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: malformed %s header", driven.ErrNoSession, p.header)
	}
	return id, nil
}

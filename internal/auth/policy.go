package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth checks.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves the exact role required for the request.
// Transitions are gated by a single role each; reads are role-agnostic.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/loc/apply":
		return RoleBuyer, true
	case strings.HasPrefix(path, "/api/v1/loc/") && method == http.MethodPost:
		switch {
		case strings.HasSuffix(path, "/issue"), strings.HasSuffix(path, "/verify"):
			return RoleBank, true
		case strings.HasSuffix(path, "/complete"):
			return RoleSeller, true
		}
		return RoleBank, true
	case path == "/api/v1/credit-lines" && method == http.MethodPost:
		return RoleBuyer, true
	case strings.HasPrefix(path, "/api/v1/credit-lines/") && strings.HasSuffix(path, "/repay"):
		return RoleBuyer, true
	case strings.HasPrefix(path, "/api/v1/credit-lines/") && strings.HasSuffix(path, "/risk-score"):
		return RoleBank, true
	case strings.HasPrefix(path, "/api/v1/exports/"):
		return RoleAdmin, true
	}
	return "", false
}

package middleware

import "strings"

// RoutePolicy authorizes unauthenticated access to a path pattern. Pattern
// is an exact path, or a prefix when it ends with '*'. Methods is either
// {"*"} for any method or an explicit set; matching is case-insensitive.
type RoutePolicy struct {
	Pattern string
	Methods []string
}

// Whitelist is the set of public routes. Order is irrelevant: the request
// is public if any matching pattern authorizes its method.
type Whitelist []RoutePolicy

// DefaultWhitelist mirrors the routes that must work before login.
func DefaultWhitelist() Whitelist {
	return Whitelist{
		{Pattern: "/user/register", Methods: []string{"*"}},
		{Pattern: "/user/login", Methods: []string{"*"}},
		{Pattern: "/user/logout", Methods: []string{"*"}},
		{Pattern: "/tag/list", Methods: []string{"get"}},
		{Pattern: "/directory/list", Methods: []string{"get"}},
		{Pattern: "/public/favicon.ico", Methods: []string{"get"}},
		{Pattern: "/public/test/*", Methods: []string{"get"}},
	}
}

// IsPublic reports whether path/method may be served without a principal.
func (w Whitelist) IsPublic(path, method string) bool {
	path = strings.ToLower(path)
	method = strings.ToLower(method)
	for _, p := range w {
		pattern := strings.ToLower(p.Pattern)
		if strings.HasSuffix(pattern, "*") {
			if !strings.HasPrefix(path, strings.TrimSuffix(pattern, "*")) {
				continue
			}
		} else if path != pattern {
			continue
		}
		for _, m := range p.Methods {
			if m == "*" || strings.ToLower(m) == method {
				return true
			}
		}
	}
	return false
}

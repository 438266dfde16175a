package auth

import (
	"net/http"
	"strings"
)

// Роли приходят в заголовке X-User-Role от шлюза. Вместо разбросанных
// сравнений строк — явная проверка против известного набора ролей.

type Role string

const (
	RoleAuthor Role = "author"
	RoleEditor Role = "editor"
)

const HeaderUserRole = "X-User-Role"

var knownRoles = map[Role]struct{}{
	RoleAuthor: {},
	RoleEditor: {},
}

// ParseRole нормализует заголовок; неизвестная или пустая роль — не роль.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownRoles[r]; !ok {
		return "", false
	}
	return r, true
}

func RoleFromRequest(r *http.Request) (Role, bool) {
	return ParseRole(r.Header.Get(HeaderUserRole))
}

// RequireRole — middleware: 403, если роль не из списка allowed.
func RequireRole(allowed ...Role) func(http.Handler) http.Handler {
	set := make(map[Role]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromRequest(r)
			if !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			if _, ok := set[role]; !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

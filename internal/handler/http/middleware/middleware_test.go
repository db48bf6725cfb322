package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenAuth = jwtauth.New("HS256", []byte("test-secret"), nil)

func protected(permission user.Permission) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return jwtauth.Verifier(tokenAuth)(AuthRequired(RequirePermission(permission)(ok)))
}

func request(t *testing.T, claims map[string]interface{}) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if claims != nil {
		_, tokenString, err := tokenAuth.Encode(claims)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tokenString)
	}
	return req
}

func TestMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		claims map[string]interface{}
		perm   user.Permission
		want   int
	}{
		{"no token", nil, user.PermissionAttendanceScan, http.StatusUnauthorized},
		{"sse token rejected", map[string]interface{}{"type": "sse", "role": "Guard"}, user.PermissionAttendanceScan, http.StatusUnauthorized},
		{"guard scans", map[string]interface{}{"type": "access", "role": "Guard"}, user.PermissionAttendanceScan, http.StatusNoContent},
		{"guard cannot list", map[string]interface{}{"type": "access", "role": "Guard"}, user.PermissionAttendanceViewAll, http.StatusForbidden},
		{"hr role spelled loosely", map[string]interface{}{"type": "access", "role": "hr_personnel"}, user.PermissionAttendanceViewAll, http.StatusNoContent},
		{"faculty sees own", map[string]interface{}{"type": "access", "role": "Faculty"}, user.PermissionAttendanceViewOwn, http.StatusNoContent},
		{"unknown role", map[string]interface{}{"type": "access", "role": "Janitor"}, user.PermissionAttendanceViewOwn, http.StatusForbidden},
		{"missing role", map[string]interface{}{"type": "access"}, user.PermissionAttendanceViewOwn, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			protected(tc.perm).ServeHTTP(rec, request(t, tc.claims))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

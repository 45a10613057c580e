package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/masar-hr/payroll-engine-go/internal/handler/http/response"
)

// RequireCompany rejects tokens without a company scope. Every payroll
// operation is tenant-bound, so a token issued before the user joined a
// company cannot reach them.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		companyID, ok := claims["company_id"].(string)
		if !ok || companyID == "" {
			response.Forbidden(w, "Token is not scoped to a company")
			return
		}

		next.ServeHTTP(w, r)
	})
}

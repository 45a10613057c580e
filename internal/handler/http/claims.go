package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

var errMissingClaims = errors.New("token is missing required claims")

// tenantClaims pulls the company and user scope out of the verified token.
// Handlers never trust tenant identifiers from the request body.
func tenantClaims(r *http.Request) (companyID string, userID string, err error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", "", err
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", errMissingClaims
	}
	userID, ok = claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", errMissingClaims
	}

	return companyID, userID, nil
}

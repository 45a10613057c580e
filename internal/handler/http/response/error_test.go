package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/masar-hr/payroll-engine-go/internal/domain/advance"
	"github.com/masar-hr/payroll-engine-go/internal/domain/employee"
	"github.com/masar-hr/payroll-engine-go/internal/domain/payroll"
	"github.com/masar-hr/payroll-engine-go/internal/domain/policy"
	"github.com/masar-hr/payroll-engine-go/internal/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHandleError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{payroll.ErrRunNotFound, http.StatusNotFound, "NOT_FOUND"},
		{payroll.ErrPayslipNotFound, http.StatusNotFound, "NOT_FOUND"},
		{payroll.ErrRunAlreadyLocked, http.StatusConflict, "CONFLICT"},
		{payroll.ErrLockedRunViolation, http.StatusConflict, "CONFLICT"},
		{payroll.ErrPeriodAlreadyPaid, http.StatusConflict, "CONFLICT"},
		{payroll.ErrRunNotBalanced, http.StatusConflict, "CONFLICT"},
		{payroll.ErrRunNotLocked, http.StatusBadRequest, "BAD_REQUEST"},
		{payroll.ErrValidationFailed, http.StatusBadRequest, "BAD_REQUEST"},
		{employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{employee.ErrNoActiveAssignment, http.StatusBadRequest, "BAD_REQUEST"},
		{policy.ErrPolicyNotFound, http.StatusNotFound, "NOT_FOUND"},
		{policy.ErrInvalidStatusChange, http.StatusConflict, "CONFLICT"},
		{policy.ErrExecutionAlreadyExists, http.StatusConflict, "CONFLICT"},
		{advance.ErrAdvanceNotFound, http.StatusNotFound, "NOT_FOUND"},
		{advance.ErrAlreadyFullyPaid, http.StatusConflict, "CONFLICT"},
		{errors.New("something unexpected"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tc.err)

			assert.Equal(t, tc.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.code, resp.Error.Code)
		})
	}
}

func TestHandleError_WrappedSentinel(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, fmt.Errorf("failed to lock run: %w", payroll.ErrRunAlreadyLocked))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleError_ValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, validation.Errors{"PeriodID": "is required"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "is required", resp.Error.Details["PeriodID"])
}

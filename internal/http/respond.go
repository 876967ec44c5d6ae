package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"infinance/internal/core"
	"infinance/internal/store"
)

// maxBodySize caps request bodies; snapshot imports are the largest
// payloads and stay well under this.
const maxBodySize = 8 << 20

// errorBody is the envelope every non-2xx JSON response carries.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Set only for insufficient-balance rejections.
	Balance   *core.Money `json:"balance,omitempty"`
	Requested *core.Money `json:"requested,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses: admission rejections
// are 422, validation failures 400, missing entities 404, the rest 500.
func writeError(w http.ResponseWriter, err error) {
	var ib *core.InsufficientBalanceError
	switch {
	case errors.As(err, &ib):
		balance, requested := ib.Balance, ib.Requested
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorDetail{
			Code:      "insufficient_balance",
			Message:   ib.Error(),
			Balance:   &balance,
			Requested: &requested,
		}})
	case errors.Is(err, core.ErrInsufficientBalance):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorDetail{
			Code:    "insufficient_balance",
			Message: err.Error(),
		}})
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    "invalid_input",
			Message: err.Error(),
		}})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorDetail{
			Code:    "not_found",
			Message: "not found",
		}})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
			Code:    "internal",
			Message: "internal error",
		}})
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidValue,
		core.ErrInvalidKind,
		core.ErrEmptyDescription,
		core.ErrEmptyName,
		core.ErrMissingCategory,
		core.ErrMissingInvestment,
		core.ErrStrayCategory,
		core.ErrStrayInvestment,
		core.ErrStrayWithdrawal,
		core.ErrInvalidGoalValue,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	return dec.Decode(dst)
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}

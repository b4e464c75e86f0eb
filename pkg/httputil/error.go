package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/sydscene/sydscene/internal/logging"
)

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func NewError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logging.FromContext(r.Context()).Sugar().Error(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}
	JSON(w, status, HTTPError{
		Code:    status,
		Message: err.Error(),
	})
}

package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sydscene/sydscene/pkg/httputil"
	"github.com/sydscene/sydscene/pkg/schemas"
)

func (c *Controller) CaptureEmail(w http.ResponseWriter, r *http.Request) {
	var in schemas.EmailCaptureIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.NewError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	res, err := c.captures.Capture(r.Context(), &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, res)
}

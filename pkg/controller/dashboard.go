package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sydscene/sydscene/pkg/httputil"
	"github.com/sydscene/sydscene/pkg/schemas"
)

func (c *Controller) ListDashboardEvents(w http.ResponseWriter, r *http.Request) {
	res, err := c.dashboard.ListEvents(r.Context(), parseEventQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, res)
}

func (c *Controller) ImportEvent(w http.ResponseWriter, r *http.Request) {
	var in schemas.ImportEvent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.NewError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if in.ImportedBy == "" {
		httputil.NewError(w, r, http.StatusBadRequest, fmt.Errorf("importedBy is required"))
		return
	}

	res, err := c.dashboard.MarkImported(r.Context(), chi.URLParam(r, "eventID"), &in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, res)
}

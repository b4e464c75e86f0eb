package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sydscene/sydscene/pkg/httputil"
)

func (c *Controller) ListEvents(w http.ResponseWriter, r *http.Request) {
	res, err := c.events.ListEvents(r.Context(), parseEventQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, res)
}

func (c *Controller) GetEvent(w http.ResponseWriter, r *http.Request) {
	res, err := c.events.GetEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, res)
}

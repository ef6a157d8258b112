package handler

import "net/http"

// NodeMOTD handles GET /node/motd
// @Summary      Node message of the day
// @Tags         node
// @Produce      json
// @Success      200  {object}  model.MOTD
// @Failure      503  {object}  model.ErrorResponse
// @Router       /node/motd [get]
func (h *Handler) NodeMOTD(w http.ResponseWriter, r *http.Request) {
	motd, err := h.node.MOTD(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, motd)
}

// NodeWork handles GET /node/work
// @Summary      Node work details
// @Tags         node
// @Produce      json
// @Success      200  {object}  model.WorkDetailed
// @Failure      503  {object}  model.ErrorResponse
// @Router       /node/work [get]
func (h *Handler) NodeWork(w http.ResponseWriter, r *http.Request) {
	work, err := h.node.DetailedWork(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, work)
}

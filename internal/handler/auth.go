package handler

import (
	"net/http"

	"github.com/tmpim/tenebra-wallet/internal/model"
	"github.com/tmpim/tenebra-wallet/internal/store"
)

// AuthStatus handles GET /master-password
// @Summary      Master password status
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.AuthStatusResponse
// @Router       /master-password [get]
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.AuthStatusResponse{
		IsAuthed:          h.session.IsAuthed(),
		HasMasterPassword: h.session.HasMasterPassword(),
	})
}

// SetupMasterPassword handles POST /master-password/setup
// @Summary      Set up the master password
// @Description  Initializes the vault from the first chosen master password and unlocks the session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  model.MasterPasswordRequest  true  "master password"
// @Success      200  {object}  model.AuthStatusResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /master-password/setup [post]
func (h *Handler) SetupMasterPassword(w http.ResponseWriter, r *http.Request) {
	var req model.MasterPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "password cannot be empty"})
		return
	}

	record, err := h.session.Initialize(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := store.SaveVaultRecord(h.dataDir, record); err != nil {
		writeError(w, err)
		return
	}

	h.AuthStatus(w, r)
}

// Unlock handles POST /master-password/unlock
// @Summary      Unlock the session
// @Description  Verifies the master password and holds the derived key in memory
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  model.MasterPasswordRequest  true  "master password"
// @Success      200  {object}  model.AuthStatusResponse
// @Failure      401  {object}  model.ErrorResponse
// @Router       /master-password/unlock [post]
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req model.MasterPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.session.Unlock(req.Password); err != nil {
		writeError(w, err)
		return
	}
	h.AuthStatus(w, r)
}

// Lock handles POST /master-password/lock
// @Summary      Lock the session
// @Description  Clears the in-memory key; wallet secrets are unreachable until the next unlock
// @Tags         auth
// @Produce      json
// @Success      200  {object}  model.AuthStatusResponse
// @Router       /master-password/lock [post]
func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	h.session.Lock()
	h.AuthStatus(w, r)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tmpim/tenebra-wallet/internal/client"
	"github.com/tmpim/tenebra-wallet/internal/crypto"
	"github.com/tmpim/tenebra-wallet/internal/model"
	"github.com/tmpim/tenebra-wallet/internal/store"
	"github.com/tmpim/tenebra-wallet/internal/submit"
	"github.com/tmpim/tenebra-wallet/internal/syncer"
)

// Handler holds the daemon's services for the HTTP API.
type Handler struct {
	session   *crypto.Session
	wallets   *store.WalletStore
	contacts  *store.ContactStore
	engine    *syncer.Engine
	submitter *submit.Submitter
	node      *client.TenebraClient
	dataDir   string
}

// New creates a Handler around the daemon's services.
func New(session *crypto.Session, wallets *store.WalletStore, contacts *store.ContactStore,
	engine *syncer.Engine, submitter *submit.Submitter, node *client.TenebraClient,
	dataDir string) *Handler {

	return &Handler{
		session:   session,
		wallets:   wallets,
		contacts:  contacts,
		engine:    engine,
		submitter: submitter,
		node:      node,
		dataDir:   dataDir,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses and the shared error
// response shape. Error payloads never include secret material.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := ""

	var apiErr *client.APIError
	var decErr *submit.WalletDecryptError

	switch {
	case errors.Is(err, crypto.ErrAuthFailed):
		status, code = http.StatusUnauthorized, "auth_failed"
	case errors.Is(err, crypto.ErrLocked):
		status, code = http.StatusUnauthorized, "locked"
	case errors.Is(err, crypto.ErrNoVault):
		status, code = http.StatusConflict, "no_master_password"
	case errors.Is(err, crypto.ErrVaultExists):
		status, code = http.StatusConflict, "master_password_exists"
	case store.IsDuplicateAddress(err):
		status, code = http.StatusConflict, "duplicate_address"
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.As(err, &decErr):
		status, code = http.StatusInternalServerError, "wallet_decrypt_error"
	case errors.As(err, &apiErr):
		status, code = http.StatusBadGateway, apiErr.Code
		if apiErr.Code == "insufficient_funds" || apiErr.Code == "invalid_parameter" {
			status = http.StatusUnprocessableEntity
		}
	case client.IsNetworkError(err):
		status, code = http.StatusServiceUnavailable, "network_error"
	}

	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/tmpim/tenebra-wallet/internal/model"
	"github.com/tmpim/tenebra-wallet/tenebra"
)

// ListWallets handles GET /wallets
// @Summary      List wallets
// @Description  Lists all locally known wallets with their cached balances
// @Tags         wallets
// @Produce      json
// @Success      200  {object}  model.WalletListResponse
// @Router       /wallets [get]
func (h *Handler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets := h.wallets.List()
	writeJSON(w, http.StatusOK, model.WalletListResponse{
		Count:   len(wallets),
		Wallets: wallets,
	})
}

// AddWallet handles POST /wallets
// @Summary      Add wallet
// @Description  Derives a private key from the password per the chosen wallet format and stores it encrypted
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body  model.AddWalletRequest  true  "wallet parameters"
// @Success      201  {object}  model.Wallet
// @Failure      401  {object}  model.ErrorResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /wallets [post]
func (h *Handler) AddWallet(w http.ResponseWriter, r *http.Request) {
	var req model.AddWalletRequest
	if !decodeBody(w, r, &req) {
		return
	}

	wallet, err := tenebra.CreateWallet(h.session, h.wallets, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	// Fetch the initial balance straight away; a failure here is not fatal,
	// the periodic sync will catch up.
	if synced, err := h.engine.SyncOne(r.Context(), wallet.ID); err == nil {
		wallet = synced
	}

	writeJSON(w, http.StatusCreated, wallet)
}

// GetWallet handles GET /wallets/{id}
// @Summary      Get wallet
// @Tags         wallets
// @Produce      json
// @Param        id  path  string  true  "wallet ID"
// @Success      200  {object}  model.Wallet
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{id} [get]
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.wallets.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

// EditWallet handles PUT /wallets/{id}
// @Summary      Edit wallet metadata
// @Description  Edits label, category or the dontSave flag; key material is immutable
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "wallet ID"
// @Param        request  body  model.EditWalletRequest  true  "fields to change"
// @Success      200  {object}  model.Wallet
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{id} [put]
func (h *Handler) EditWallet(w http.ResponseWriter, r *http.Request) {
	var req model.EditWalletRequest
	if !decodeBody(w, r, &req) {
		return
	}

	wallet, err := h.wallets.Edit(r.PathValue("id"), func(w *model.Wallet) {
		if req.Label != nil {
			w.Label = *req.Label
		}
		if req.Category != nil {
			w.Category = *req.Category
		}
		if req.DontSave != nil {
			w.DontSave = *req.DontSave
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

// RemoveWallet handles DELETE /wallets/{id}
// @Summary      Remove wallet
// @Tags         wallets
// @Produce      json
// @Param        id  path  string  true  "wallet ID"
// @Success      204  "removed"
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{id} [delete]
func (h *Handler) RemoveWallet(w http.ResponseWriter, r *http.Request) {
	if err := h.wallets.Remove(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncWallets handles POST /wallets/sync
// @Summary      Sync all wallets
// @Description  Fetches balance, name count and stake for every wallet from the node
// @Tags         wallets
// @Produce      json
// @Success      200  {object}  model.WalletListResponse
// @Failure      503  {object}  model.ErrorResponse
// @Router       /wallets/sync [post]
func (h *Handler) SyncWallets(w http.ResponseWriter, r *http.Request) {
	updated, err := h.engine.SyncAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.WalletListResponse{Count: len(updated), Wallets: updated})
}

// SyncWallet handles POST /wallets/{id}/sync
// @Summary      Sync one wallet
// @Tags         wallets
// @Produce      json
// @Param        id  path  string  true  "wallet ID"
// @Success      200  {object}  model.Wallet
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{id}/sync [post]
func (h *Handler) SyncWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.engine.SyncOne(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

// WalletQR handles GET /wallets/{id}/qr
// @Summary      Wallet address QR code
// @Description  Renders the wallet's address as a PNG QR code
// @Tags         wallets
// @Produce      png
// @Param        id    path   string  true   "wallet ID"
// @Param        size  query  int     false  "image size in pixels"
// @Success      200  {file}  binary
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallets/{id}/qr [get]
func (h *Handler) WalletQR(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.wallets.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	png, err := tenebra.AddressQR(wallet.Address, size)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

package handler

import (
	"net/http"

	"github.com/tmpim/tenebra-wallet/internal/common"
	"github.com/tmpim/tenebra-wallet/internal/model"
)

// resyncAfterSubmit refreshes the wallets a successful submission touched.
// The submitter itself never writes to the store; keeping that here makes the
// flow of balance updates one-directional (node -> sync engine -> store).
func (h *Handler) resyncAfterSubmit(r *http.Request, walletID, to string) {
	if _, err := h.engine.SyncOne(r.Context(), walletID); err != nil {
		return // the periodic sync will catch up
	}
	if to != "" {
		// Best effort: also refresh the recipient when it is one of ours.
		h.engine.SyncAddress(r.Context(), to)
	}
}

// Send handles POST /transactions
// @Summary      Send a transaction
// @Description  Decrypts the wallet's key under the master password and submits a transaction to the node
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request  body  model.SendRequest  true  "transaction parameters"
// @Success      200  {object}  model.SendResponse
// @Failure      401  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /transactions [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req model.SendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !common.IsValidRecipient(req.To) {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid recipient", Code: "invalid_parameter"})
		return
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "amount must be positive", Code: "invalid_parameter"})
		return
	}

	tx, err := h.submitter.Send(r.Context(), req.WalletID, req.MasterPassword, req.To, req.Amount, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}

	h.resyncAfterSubmit(r, req.WalletID, tx.To)
	writeJSON(w, http.StatusOK, model.SendResponse{Transaction: tx})
}

// Deposit handles POST /staking
// @Summary      Deposit stake
// @Tags         staking
// @Accept       json
// @Produce      json
// @Param        request  body  model.StakeRequest  true  "staking parameters"
// @Success      200  {object}  model.StakeResponse
// @Failure      401  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /staking [post]
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req model.StakeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "amount must be positive", Code: "invalid_parameter"})
		return
	}

	stake, err := h.submitter.Deposit(r.Context(), req.WalletID, req.MasterPassword, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	h.resyncAfterSubmit(r, req.WalletID, "")
	writeJSON(w, http.StatusOK, model.StakeResponse{Stake: stake})
}

// Withdraw handles POST /staking/withdraw
// @Summary      Withdraw stake
// @Tags         staking
// @Accept       json
// @Produce      json
// @Param        request  body  model.StakeRequest  true  "staking parameters"
// @Success      200  {object}  model.StakeResponse
// @Failure      401  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /staking/withdraw [post]
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req model.StakeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "amount must be positive", Code: "invalid_parameter"})
		return
	}

	stake, err := h.submitter.Withdraw(r.Context(), req.WalletID, req.MasterPassword, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	h.resyncAfterSubmit(r, req.WalletID, "")
	writeJSON(w, http.StatusOK, model.StakeResponse{Stake: stake})
}

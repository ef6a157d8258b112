package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tmpim/tenebra-wallet/internal/handler"
)

// SetupRouter sets up the router with handlers.
func SetupRouter(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Master password session
	mux.HandleFunc("GET /master-password", h.AuthStatus)
	mux.HandleFunc("POST /master-password/setup", h.SetupMasterPassword)
	mux.HandleFunc("POST /master-password/unlock", h.Unlock)
	mux.HandleFunc("POST /master-password/lock", h.Lock)

	// Wallets
	mux.HandleFunc("GET /wallets", h.ListWallets)
	mux.HandleFunc("POST /wallets", h.AddWallet)
	mux.HandleFunc("POST /wallets/sync", h.SyncWallets)
	mux.HandleFunc("GET /wallets/{id}", h.GetWallet)
	mux.HandleFunc("PUT /wallets/{id}", h.EditWallet)
	mux.HandleFunc("DELETE /wallets/{id}", h.RemoveWallet)
	mux.HandleFunc("POST /wallets/{id}/sync", h.SyncWallet)
	mux.HandleFunc("GET /wallets/{id}/qr", h.WalletQR)

	// Contacts
	mux.HandleFunc("GET /contacts", h.ListContacts)
	mux.HandleFunc("POST /contacts", h.AddContact)
	mux.HandleFunc("PUT /contacts/{id}", h.EditContact)
	mux.HandleFunc("DELETE /contacts/{id}", h.RemoveContact)

	// Transactions and staking
	mux.HandleFunc("POST /transactions", h.Send)
	mux.HandleFunc("POST /staking", h.Deposit)
	mux.HandleFunc("POST /staking/withdraw", h.Withdraw)

	// Backup
	mux.HandleFunc("GET /backup", h.ExportBackup)
	mux.HandleFunc("POST /backup", h.ImportBackup)

	// Node passthrough
	mux.HandleFunc("GET /node/motd", h.NodeMOTD)
	mux.HandleFunc("GET /node/work", h.NodeWork)

	return mux
}

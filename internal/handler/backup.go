package handler

import (
	"net/http"

	"github.com/tmpim/tenebra-wallet/internal/backup"
	"github.com/tmpim/tenebra-wallet/internal/model"
)

// ExportBackup handles GET /backup
// @Summary      Export a backup
// @Description  Returns a base64 backup code containing the vault record and all wallets (except dontSave) and contacts
// @Tags         backup
// @Produce      json
// @Success      200  {object}  model.BackupExportResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /backup [get]
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	code, err := backup.Export(h.session, h.wallets, h.contacts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BackupExportResponse{Code: code})
}

// ImportBackup handles POST /backup
// @Summary      Import a backup
// @Description  Verifies the backup's master password, re-encrypts its wallet secrets under the current key and merges everything in
// @Tags         backup
// @Accept       json
// @Produce      json
// @Param        request  body  model.BackupImportRequest  true  "backup code and its master password"
// @Success      200  {object}  model.BackupImportResponse
// @Failure      401  {object}  model.ErrorResponse
// @Router       /backup [post]
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	var req model.BackupImportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := backup.Import(req.Code, req.MasterPassword, h.session, h.wallets, h.contacts)
	if err != nil {
		writeError(w, err)
		return
	}

	// Imported wallets start with no cached fields; fetch them now.
	h.engine.SyncAll(r.Context())

	writeJSON(w, http.StatusOK, model.BackupImportResponse{
		Wallets:  result.Wallets,
		Contacts: result.Contacts,
		Skipped:  result.Skipped,
	})
}

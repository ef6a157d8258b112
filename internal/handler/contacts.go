package handler

import (
	"net/http"

	"github.com/tmpim/tenebra-wallet/internal/common"
	"github.com/tmpim/tenebra-wallet/internal/model"
)

func validContact(w http.ResponseWriter, req *model.ContactRequest) bool {
	if req.IsName {
		if !common.IsValidName(req.Address) {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid name"})
			return false
		}
		return true
	}
	if !common.IsValidAddress(req.Address) {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid address"})
		return false
	}
	return true
}

// ListContacts handles GET /contacts
// @Summary      List contacts
// @Tags         contacts
// @Produce      json
// @Success      200  {object}  model.ContactListResponse
// @Router       /contacts [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts := h.contacts.List()
	writeJSON(w, http.StatusOK, model.ContactListResponse{
		Count:    len(contacts),
		Contacts: contacts,
	})
}

// AddContact handles POST /contacts
// @Summary      Add contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        request  body  model.ContactRequest  true  "contact"
// @Success      201  {object}  model.Contact
// @Router       /contacts [post]
func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validContact(w, &req) {
		return
	}

	contact := &model.Contact{Address: req.Address, Label: req.Label, IsName: req.IsName}
	if err := h.contacts.Add(contact); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

// EditContact handles PUT /contacts/{id}
// @Summary      Edit contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "contact ID"
// @Param        request  body  model.ContactRequest  true  "contact"
// @Success      200  {object}  model.Contact
// @Failure      404  {object}  model.ErrorResponse
// @Router       /contacts/{id} [put]
func (h *Handler) EditContact(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validContact(w, &req) {
		return
	}

	contact, err := h.contacts.Edit(r.PathValue("id"), req.Address, req.Label, req.IsName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// RemoveContact handles DELETE /contacts/{id}
// @Summary      Remove contact
// @Tags         contacts
// @Produce      json
// @Param        id  path  string  true  "contact ID"
// @Success      204  "removed"
// @Failure      404  {object}  model.ErrorResponse
// @Router       /contacts/{id} [delete]
func (h *Handler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Remove(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

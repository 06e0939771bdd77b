package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

type setAPIKeyReq struct {
	EnvVar string `json:"env_var"`
	Key    string `json:"key"`
}

// SetAPIKeySecret stores a source API key in the OS keychain so it does not
// have to live in .env. Keys are read back by the adapters through the same
// env-then-keychain lookup.
func (h Handler) SetAPIKeySecret(w http.ResponseWriter, r *http.Request) {
	var req setAPIKeyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.EnvVar) == "" || req.Key == "" {
		WriteError(w, http.StatusBadRequest, "missing_fields", "env_var and key are required")
		return
	}
	if err := h.deps.SetAPIKey(req.EnvVar, req.Key); err != nil {
		WriteError(w, http.StatusBadRequest, "store_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setMailPasswordReq struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// SetMailPasswordSecret stores the listing-alert inbox password under the
// keyring account the mailalert source reads from.
func (h Handler) SetMailPasswordSecret(w http.ResponseWriter, r *http.Request) {
	var req setMailPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.Account) == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "missing_fields", "account and password are required")
		return
	}
	if err := h.deps.SetMailPassword(req.Account, req.Password); err != nil {
		WriteError(w, http.StatusBadRequest, "store_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

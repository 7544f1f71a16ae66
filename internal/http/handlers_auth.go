package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/stocktrack/inventory-service/internal/obs"
)

type loginRequest struct {
	Password string `json:"password"`
}

func (a *App) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		WriteMessage(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Password != a.Cfg.Password {
		WriteMessage(w, http.StatusUnauthorized, "Incorrect password")
		return
	}
	token, err := a.Sessions.Issue()
	if err != nil {
		WriteError(w, r, err)
		return
	}
	a.Sessions.SetCookie(w, token)
	w.WriteHeader(http.StatusOK)
	obs.Logger.Info("login", "request_id", RequestIDFromContext(r.Context()))
}

func (a *App) logoutHandler(w http.ResponseWriter, r *http.Request) {
	a.Sessions.ClearCookie(w)
	w.WriteHeader(http.StatusOK)
}

func (a *App) checkAuthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
}

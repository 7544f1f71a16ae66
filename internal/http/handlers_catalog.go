package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stocktrack/inventory-service/internal/store"
)

type renameRequest struct {
	Name string `json:"name"`
}

func (a *App) listManufacturersHandler(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := a.Store.ListManufacturers(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, manufacturers)
}

func (a *App) getManufacturerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, "Invalid manufacturer ID")
		return
	}
	m, err := a.Store.GetManufacturer(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Manufacturer does not exist")
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) renameManufacturerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, "Invalid manufacturer ID")
		return
	}
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		WriteMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	m, err := a.Store.RenameManufacturer(r.Context(), id, req.Name)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Manufacturer does not exist")
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) deleteManufacturerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, "Invalid manufacturer ID")
		return
	}
	err := a.Store.DeleteManufacturer(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Manufacturer does not exist")
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *App) listSuppliersHandler(w http.ResponseWriter, r *http.Request) {
	suppliers, err := a.Store.ListSuppliers(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

func (a *App) getSupplierHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, "Invalid supplier ID")
		return
	}
	s, err := a.Store.GetSupplier(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Supplier does not exist")
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *App) renameSupplierHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, "Invalid supplier ID")
		return
	}
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		WriteMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	s, err := a.Store.RenameSupplier(r.Context(), id, req.Name)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Supplier does not exist")
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *App) deleteSupplierHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, "Invalid supplier ID")
		return
	}
	err := a.Store.DeleteSupplier(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Supplier does not exist")
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

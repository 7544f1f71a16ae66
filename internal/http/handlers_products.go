package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stocktrack/inventory-service/internal/inventory"
	"github.com/stocktrack/inventory-service/internal/model"
	"github.com/stocktrack/inventory-service/internal/obs"
	"github.com/stocktrack/inventory-service/internal/store"
)

// productRequest is the write shape of a product. Price is a string so
// clients can submit grouped digits ("1,234.50"); manufacturer and
// supplier are names, created on the fly when unknown.
type productRequest struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Price        *string `json:"price"`
	Description  *string `json:"description"`
	Manufacturer *string `json:"manufacturer"`
	Supplier     *string `json:"supplier"`
}

func (req *productRequest) toInput() (store.ProductInput, string) {
	if req.Code == "" {
		return store.ProductInput{}, "code is required"
	}
	if req.Name == "" {
		return store.ProductInput{}, "name is required"
	}
	in := store.ProductInput{
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		Manufacturer: req.Manufacturer,
		Supplier:     req.Supplier,
	}
	if req.Price != nil && *req.Price != "" {
		d, err := decimal.NewFromString(strings.ReplaceAll(*req.Price, ",", ""))
		if err != nil {
			return store.ProductInput{}, "invalid price"
		}
		in.Price = &d
	}
	return in, ""
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.Store.ListProducts(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// productDetail adds the audit history to a product payload.
type productDetail struct {
	model.Product
	UpdateEvents []store.ProductEvent `json:"updateEvents"`
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	p, err := a.Store.GetProduct(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Product does not exist")
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	events, err := a.Store.ListProductEvents(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if events == nil {
		events = []store.ProductEvent{}
	}
	writeJSON(w, http.StatusOK, productDetail{Product: p, UpdateEvents: events})
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteMessage(w, http.StatusBadRequest, "Invalid request")
		return
	}
	in, msg := req.toInput()
	if msg != "" {
		WriteMessage(w, http.StatusBadRequest, msg)
		return
	}
	p, err := a.Store.CreateProduct(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteMessage(w, http.StatusBadRequest, "Invalid request")
		return
	}
	in, msg := req.toInput()
	if msg != "" {
		WriteMessage(w, http.StatusBadRequest, msg)
		return
	}
	p, err := a.Store.UpdateProduct(r.Context(), id, in)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Product does not exist")
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	err := a.Store.DeleteProduct(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Product does not exist")
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// scanEntry is one scanned line: positive quantity adds stock, negative
// removes it.
type scanEntry struct {
	ID       uint `json:"id"`
	Quantity int  `json:"quantity"`
}

func (a *App) scanHandler(w http.ResponseWriter, r *http.Request) {
	var batch []scanEntry
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		WriteMessage(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if len(batch) == 0 {
		WriteMessage(w, http.StatusBadRequest, "Empty batch")
		return
	}
	entries := make([]inventory.Entry, len(batch))
	for i, e := range batch {
		if e.Quantity == 0 {
			WriteMessage(w, http.StatusBadRequest, "quantity must be nonzero")
			return
		}
		entries[i] = inventory.Entry{ProductID: e.ID, Delta: e.Quantity}
	}
	ev, err := a.Inventory.Reconcile(r.Context(), entries)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	obs.Logger.Info("stock_reconciled",
		"event_id", ev.ID,
		"entries", len(ev.Entries),
		"request_id", RequestIDFromContext(r.Context()),
	)
	writeJSON(w, http.StatusOK, ev)
}

func (a *App) clearHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Inventory.ClearQuantities(r.Context()); err != nil {
		WriteError(w, r, err)
		return
	}
	obs.Logger.Info("quantities_cleared", "request_id", RequestIDFromContext(r.Context()))
	w.WriteHeader(http.StatusOK)
}

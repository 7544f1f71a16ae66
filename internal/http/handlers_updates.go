package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/stocktrack/inventory-service/internal/export"
	"github.com/stocktrack/inventory-service/internal/obs"
	"github.com/stocktrack/inventory-service/internal/store"
)

func (a *App) listUpdatesHandler(w http.ResponseWriter, r *http.Request) {
	events, err := a.Store.ListUpdateEvents(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *App) deleteUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		WriteMessage(w, http.StatusBadRequest, "Invalid update event ID")
		return
	}
	err := a.Inventory.DeleteEvent(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Update event does not exist")
		return
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}
	obs.Logger.Info("update_event_deleted", "event_id", id, "request_id", RequestIDFromContext(r.Context()))
	w.WriteHeader(http.StatusOK)
}

func (a *App) exportHandler(w http.ResponseWriter, r *http.Request) {
	var filter store.AuditFilter
	if raw := r.URL.Query().Get("productId"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			WriteMessage(w, http.StatusBadRequest, "Invalid product ID")
			return
		}
		id := uint(n)
		filter.ProductID = &id
	}
	if month := r.URL.Query().Get("month"); month != "" {
		from, to, err := export.MonthWindow(month)
		if err != nil {
			WriteMessage(w, http.StatusBadRequest, "Invalid month")
			return
		}
		filter.From = &from
		filter.To = &to
	}
	rows, err := a.Store.AuditTrail(r.Context(), filter)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment;filename=history.csv")
	if err := export.Write(w, rows); err != nil {
		obs.Logger.Error("csv_export_error", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
}

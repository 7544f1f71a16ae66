package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stocktrack/inventory-service/internal/auth"
	"github.com/stocktrack/inventory-service/internal/config"
	httpopenapi "github.com/stocktrack/inventory-service/internal/http/openapi"
	"github.com/stocktrack/inventory-service/internal/inventory"
	"github.com/stocktrack/inventory-service/internal/store"
)

// App wires the handlers to their collaborators.
type App struct {
	Cfg       config.Config
	Store     store.Store
	Inventory *inventory.Service
	Sessions  *auth.Sessions
}

func NewApp(cfg config.Config, st store.Store) *App {
	return &App{
		Cfg:       cfg,
		Store:     st,
		Inventory: inventory.New(st),
		Sessions:  auth.New(cfg.Password),
	}
}

// idParam parses the {id} URL parameter. The bool result is false when
// the value is not a positive integer.
func idParam(r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}

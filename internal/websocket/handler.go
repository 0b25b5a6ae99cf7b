package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/toodo/internal/live"
	"github.com/dukerupert/toodo/internal/settings"
	"github.com/dukerupert/toodo/internal/view"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket, subscribes them to the snapshot feed and runs them as Hub
// clients. Initial view params come from the query string; without a sort
// parameter the stored sort_order preference applies.
func HandleWebSocket(hub *Hub, feed *live.Feed, reorderer Reorderer, prefs settings.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		q := r.URL.Query()
		sort := q.Get("sort")
		if sort == "" {
			if s, err := prefs.Settings(); err == nil {
				sort = s.SortOrder
			}
		}
		sub, err := feed.Subscribe(view.Params{
			Tab:      view.ParseTab(q.Get("tab")),
			Query:    q.Get("q"),
			Sort:     view.ParseSort(sort),
			Category: q.Get("category"),
		})
		if err != nil {
			hub.logger.Error("subscribe feed", "error", err)
			conn.Close(ws.StatusInternalError, "failed to load state")
			return
		}

		client := NewClient(hub, conn, sub, reorderer)
		client.Run(r.Context())
	}
}

package handlers

import (
	"net/http"

	"github.com/rfuzzo/plox/internal/plugin"
)

// listResponse is the JSON body for GET /api/list.
type listResponse struct {
	Plugins []plugin.Record `json:"plugins"`
}

// ListHandler serves GET /api/list: the current, unmodified inventory in
// its on-disk load order, with whatever header/filesystem metadata could
// be gathered.
type ListHandler struct{ Deps Deps }

func (h ListHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := runRequest{
		Game:     q.Get("game"),
		GameRoot: q.Get("gameRoot"),
		RulesDir: q.Get("rulesDir"),
	}

	resolvedReq, err := h.Deps.resolve(req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, _, err := h.Deps.buildInventory(r.Context(), resolvedReq)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, listResponse{Plugins: inv.Records()})
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rfuzzo/plox/internal/message"
	"github.com/rfuzzo/plox/internal/reporter"
)

// sortRequest extends runRequest with /api/sort's write-back control.
type sortRequest struct {
	runRequest
	// DryRun computes the new order without writing it back to the game's
	// load-order file.
	DryRun bool `json:"dryRun"`
}

// sortResponse is the JSON body for both /api/sort and /api/verify.
type sortResponse struct {
	// Order is the computed load order. Nil when sorting failed on a cycle.
	Order []string `json:"order,omitempty"`

	// AlreadySorted is true when Order equals the inventory's current order.
	AlreadySorted bool `json:"alreadySorted"`

	// Written is true when /api/sort wrote Order back to the game config.
	Written bool `json:"written"`

	Messages []message.Message `json:"messages"`
	Stats    message.Stats     `json:"stats"`
	Cycles   *reporter.Report  `json:"cycles,omitempty"`

	// ParseWarnings lists any rule files that failed to parse in full;
	// parsing continues past them, so a sort or verify run still proceeds.
	ParseWarnings []string `json:"parseWarnings,omitempty"`
}

// decodeBody decodes a JSON body into v, treating an empty body as "use
// every default" rather than a decode error.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}

// SortHandler serves POST /api/sort.
type SortHandler struct{ Deps Deps }

// Sort computes a new load order and, unless DryRun is set, writes it
// back via the resolved game adapter.
func (h SortHandler) Sort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, adapter, order, err := h.Deps.runSortOrVerify(r.Context(), req.runRequest)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !req.DryRun && order != nil && !resp.AlreadySorted {
		if err := adapter.WriteOrder(order); err != nil {
			WriteError(w, http.StatusInternalServerError, "write load order: "+err.Error())
			return
		}
		resp.Written = true
	}

	WriteJSON(w, http.StatusOK, resp)
}

// VerifyHandler serves POST /api/verify: computes what a sort would
// produce, but never writes it back.
type VerifyHandler struct{ Deps Deps }

func (h VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, _, _, err := h.Deps.runSortOrVerify(r.Context(), req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

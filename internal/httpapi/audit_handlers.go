package httpapi

import (
	"net/http"

	"github.com/JuanPaGargoo/pos-core-api/internal/audit"
)

func (a *API) handleListAudit(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	entries, total, err := a.trail.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeData(w, http.StatusOK, entries, listMeta{Page: page, Limit: limit, Total: total})
}

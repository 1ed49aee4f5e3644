package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/rentscore/rentscore/pkg/scoring"
)

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, scoring.InvalidField("body", "exceeds %d bytes", tooLarge.Limit)
		}
		return nil, eris.Wrap(err, "read request body")
	}
	return body, nil
}

func (h *Handler) handleListCalculators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Calculators())
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.registry.Run(r.Context(), h.engine, chi.URLParam(r, "name"), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleOrgCalculate runs a portfolio calculator against the org's stored
// roster. The body carries the remaining options, e.g. forecast_month.
func (h *Handler) handleOrgCalculate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")
	if c, ok := h.registry.Lookup(name); !ok || !c.AcceptsRoster {
		writeError(w, http.StatusNotFound, "no roster calculator named "+name)
		return
	}
	tenants, err := h.rosters.Tenants(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.registry.RunWithTenants(r.Context(), h.engine, name, body, tenants)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type putRosterRequest struct {
	Tenants []scoring.TenantRiskInput `json:"tenants"`
}

type rosterInfo struct {
	OrgID       string `json:"org_id"`
	DocumentID  string `json:"document_id"`
	TenantCount int    `json:"tenant_count"`
	UpdatedAt   string `json:"updated_at"`
}

func (h *Handler) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	ros, err := h.rosters.Get(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ros)
}

func (h *Handler) handleGetRosterRevision(w http.ResponseWriter, r *http.Request) {
	ros, err := h.rosters.Revision(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "documentID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ros)
}

func (h *Handler) handlePutRoster(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req putRosterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	ros, err := h.rosters.Put(r.Context(), chi.URLParam(r, "orgID"), req.Tenants)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rosterInfo{
		OrgID:       ros.OrgID,
		DocumentID:  ros.DocumentID,
		TenantCount: len(ros.Tenants),
		UpdatedAt:   ros.UpdatedAt.Format(time.RFC3339),
	})
}

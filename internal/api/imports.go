package api

import (
	"net/http"

	"crm-gateway/internal/reconcile"

	"github.com/gin-gonic/gin"
)

// ImportHandler exposes the reconciliation engine over HTTP. Mapping reports
// are not server-side state: the client receives the report from /map and
// posts it back (possibly after resolving conflicts) to /commit.
type ImportHandler struct {
	Engine *reconcile.Engine
}

func NewImportHandler(engine *reconcile.Engine) *ImportHandler {
	return &ImportHandler{Engine: engine}
}

type MapRequest struct {
	Rows []reconcile.ImportedRow `json:"rows" binding:"required"`
}

func (h *ImportHandler) MapRows(c *gin.Context) {
	var req MapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.Engine.MapRows(req.Rows)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, "Failed to map rows: "+err.Error())
		return
	}

	h.Engine.PropagatePhones(report)
	respondOK(c, http.StatusOK, report)
}

type ResolveRequest struct {
	Report   *reconcile.MappingReport  `json:"report" binding:"required"`
	Index    int                       `json:"index"`
	Strategy reconcile.ResolveStrategy `json:"strategy" binding:"required"`
	Name     string                    `json:"name"`
	Phone    string                    `json:"phone"`
}

func (h *ImportHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Engine.ResolveConflict(req.Report, req.Index, req.Strategy, req.Name, req.Phone); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, http.StatusOK, req.Report)
}

type CommitRequest struct {
	Report *reconcile.MappingReport `json:"report" binding:"required"`
}

func (h *ImportHandler) Commit(c *gin.Context) {
	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	h.Engine.PropagatePhones(req.Report)
	stats := h.Engine.Persist(req.Report)

	respondOK(c, http.StatusOK, gin.H{
		"batch_id": req.Report.BatchID,
		"mapping":  req.Report.Stats,
		"persist":  stats,
	})
}

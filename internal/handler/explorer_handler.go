package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/golang/geo/r2"

	"github.com/jengzang/incidentmap/internal/colormap"
	"github.com/jengzang/incidentmap/internal/dataset"
	"github.com/jengzang/incidentmap/internal/filter"
	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/service"
	"github.com/jengzang/incidentmap/pkg/response"
)

// ExplorerHandler handles HTTP requests for the four filter entry points and
// the view and hover events
type ExplorerHandler struct {
	session  *service.Session
	boundary *dataset.Boundary
}

// NewExplorerHandler creates a new explorer handler. boundary may be nil.
func NewExplorerHandler(session *service.Session, boundary *dataset.Boundary) *ExplorerHandler {
	return &ExplorerHandler{
		session:  session,
		boundary: boundary,
	}
}

// QuantitativeRequest is a slider position. A high at or above the attribute
// maximum means "low or greater".
type QuantitativeRequest struct {
	Attribute string   `json:"attribute" binding:"required"`
	Low       *float64 `json:"low" binding:"required"`
	High      *float64 `json:"high" binding:"required"`
}

// NominalRequest is a multi-select state
type NominalRequest struct {
	Attribute string   `json:"attribute" binding:"required"`
	Selected  []string `json:"selected"`
}

// ColorRequest selects the color attribute; empty selects the default color
type ColorRequest struct {
	Attribute string `json:"attribute"`
}

// GestureRequest starts or ends a pan/zoom gesture
type GestureRequest struct {
	Phase string `json:"phase" binding:"required,oneof=begin end"`
}

// HoverRequest is a pointer entering a marker. Without a key the marker is
// found under the pointer.
type HoverRequest struct {
	Key string  `json:"key"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// UpdateQuantitativeFilter handles POST /api/v1/filters/quantitative
func (h *ExplorerHandler) UpdateQuantitativeFilter(c *gin.Context) {
	var req QuantitativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	frame, err := h.session.UpdateQuantitativeFilter(c.Request.Context(), req.Attribute, *req.Low, *req.High)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, frame)
}

// UpdateNominalFilter handles POST /api/v1/filters/nominal
func (h *ExplorerHandler) UpdateNominalFilter(c *gin.Context) {
	var req NominalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	frame, err := h.session.UpdateNominalFilter(c.Request.Context(), req.Attribute, req.Selected)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, frame)
}

// ResetFilters handles POST /api/v1/filters/reset
func (h *ExplorerHandler) ResetFilters(c *gin.Context) {
	frame, err := h.session.ResetFilters(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, frame)
}

// SelectColorAttribute handles POST /api/v1/color
func (h *ExplorerHandler) SelectColorAttribute(c *gin.Context) {
	var req ColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	frame, err := h.session.SelectColorAttribute(c.Request.Context(), req.Attribute)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, frame)
}

// ApplyTransform handles POST /api/v1/view/transform
func (h *ExplorerHandler) ApplyTransform(c *gin.Context) {
	var req models.Transform
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	frame, err := h.session.ApplyTransform(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, frame)
}

// Gesture handles POST /api/v1/view/gesture
func (h *ExplorerHandler) Gesture(c *gin.Context) {
	var req GestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	state, err := h.session.Gesture(c.Request.Context(), req.Phase == "begin")
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"state": state.String()})
}

// HoverIn handles POST /api/v1/hover
func (h *ExplorerHandler) HoverIn(c *gin.Context) {
	var req HoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pointer := r2.Point{X: req.X, Y: req.Y}
	var frame models.Frame
	var err error
	if req.Key == "" {
		frame, err = h.session.HoverAt(c.Request.Context(), pointer)
	} else {
		frame, err = h.session.HoverIn(c.Request.Context(), req.Key, pointer)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, frame)
}

// HoverOut handles DELETE /api/v1/hover
func (h *ExplorerHandler) HoverOut(c *gin.Context) {
	frame, err := h.session.HoverOut(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, frame)
}

// GetState handles GET /api/v1/state
func (h *ExplorerHandler) GetState(c *gin.Context) {
	state, err := h.session.State(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, state)
}

// GetSnapshot handles GET /api/v1/snapshot
func (h *ExplorerHandler) GetSnapshot(c *gin.Context) {
	frame, err := h.session.Snapshot(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, frame)
}

// GetVisible handles GET /api/v1/records
func (h *ExplorerHandler) GetVisible(c *gin.Context) {
	records, err := h.session.Visible(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, records)
}

// GetRecord handles GET /api/v1/records/:case
func (h *ExplorerHandler) GetRecord(c *gin.Context) {
	rec, ok := h.session.Record(c.Param("case"))
	if !ok {
		response.NotFound(c, "Record not found")
		return
	}
	response.Success(c, rec)
}

// GetRanges handles GET /api/v1/ranges
func (h *ExplorerHandler) GetRanges(c *gin.Context) {
	response.Success(c, h.session.Ranges())
}

// GetBoundary handles GET /api/v1/boundary
func (h *ExplorerHandler) GetBoundary(c *gin.Context) {
	if h.boundary == nil {
		response.NotFound(c, "No boundary loaded")
		return
	}
	response.Success(c, h.boundary)
}

// fail maps service errors to HTTP status codes
func (h *ExplorerHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, filter.ErrUnknownAttribute),
		errors.Is(err, filter.ErrKindMismatch),
		errors.Is(err, colormap.ErrUnknownAttribute):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUnknownRecord):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrLoopClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		response.Unavailable(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}

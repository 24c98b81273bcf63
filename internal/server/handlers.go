package server

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/godlykids/radio-engine/internal/broadcast"
	"github.com/godlykids/radio-engine/internal/domain"
	"github.com/godlykids/radio-engine/internal/segments"
)

// assembleBroadcast builds and persists a station's segment timeline
func (s *Server) assembleBroadcast(c *gin.Context) {
	stationID := c.Param("stationId")

	var req AssembleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	opts := broadcast.AssembleOptions{
		Frequency:   req.Frequency,
		RotateHosts: s.cfg.Broadcast.RotateHosts,
		Shuffle:     s.cfg.Broadcast.Shuffle,
	}
	if opts.Frequency < 1 {
		opts.Frequency = s.cfg.Broadcast.BreakFrequency
	}
	if req.RotateHosts != nil {
		opts.RotateHosts = *req.RotateHosts
	}
	if req.Shuffle != nil {
		opts.Shuffle = *req.Shuffle
	}

	startOrder, err := s.store.NextOrder(c.Request.Context(), stationID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	opts.StartOrder = startOrder

	timeline, err := s.assembler.Assemble(stationID, req.Songs, req.Hosts, opts)
	if err != nil {
		if errors.Is(err, broadcast.ErrNoHosts) {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Insert(c.Request.Context(), timeline); err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	slog.Info("Assembled broadcast", "stationId", stationID, "segments", len(timeline))
	c.JSON(201, gin.H{"segments": timeline})
}

// listSegments returns a station's segments ordered by position
func (s *Server) listSegments(c *gin.Context) {
	stationID := c.Param("stationId")

	listed, err := s.store.ListByStation(c.Request.Context(), stationID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	if listed == nil {
		listed = []domain.Segment{}
	}

	c.JSON(200, gin.H{"segments": listed, "total": len(listed)})
}

// generateBreak runs the full host-break pipeline for one request
func (s *Server) generateBreak(c *gin.Context) {
	stationID := c.Param("stationId")

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if len(req.Hosts) == 0 {
		c.JSON(400, gin.H{"error": ErrNoHostsProvided.Error()})
		return
	}

	breakReq := &domain.HostBreakRequest{
		ContentType:           req.ContentType,
		TargetDurationSeconds: req.TargetDurationSeconds,
		ContentDescription:    req.ContentDescription,
		NextTrack:             req.NextTrack,
		PreviousTrack:         req.PreviousTrack,
		IsDuo:                 req.IsDuo,
		Host:                  &req.Hosts[0],
	}
	if req.IsDuo && len(req.Hosts) > 1 {
		breakReq.CoHost = &req.Hosts[1]
	}
	if breakReq.TargetDurationSeconds <= 0 {
		breakReq.TargetDurationSeconds = 20
	}

	result, err := s.generator.Generate(c.Request.Context(), stationID, breakReq, req.ForceRegenerate)
	if err != nil {
		slog.Error("Host break generation failed", "stationId", stationID, "contentType", req.ContentType, "error", err)
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, result)
}

// updateIntroScript records a custom intro script change. The cached station
// intro is cleared so the next generation picks up the new script.
func (s *Server) updateIntroScript(c *gin.Context) {
	stationID := c.Param("stationId")

	var req IntroScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	s.generator.InvalidateIntro(stationID)

	slog.Info("Station intro script updated, cache cleared", "stationId", stationID)
	c.JSON(200, gin.H{"status": "intro cache cleared"})
}

// updateSegment applies a partial update to one segment
func (s *Server) updateSegment(c *gin.Context) {
	id := c.Param("id")

	var req UpdateSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if req.Status != nil && !validStatus(*req.Status) {
		c.JSON(400, gin.H{"error": ErrInvalidStatus.Error()})
		return
	}

	update := segments.Update{
		ScriptText:      req.ScriptText,
		AudioURL:        req.AudioURL,
		Status:          req.Status,
		Order:           req.Order,
		DurationSeconds: req.DurationSeconds,
		ErrorMessage:    req.ErrorMessage,
	}

	if err := s.store.Update(c.Request.Context(), id, update); err != nil {
		if errors.Is(err, segments.ErrNotFound) {
			c.JSON(404, gin.H{"error": err.Error()})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	updated, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, updated)
}

// reorderSegments applies a bulk reorder as one atomic batch
func (s *Server) reorderSegments(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Reorder(c.Request.Context(), req.Segments); err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"updated": len(req.Segments)})
}

// deleteSegment removes one segment
func (s *Server) deleteSegment(c *gin.Context) {
	id := c.Param("id")

	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, segments.ErrNotFound) {
			c.JSON(404, gin.H{"error": err.Error()})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"deleted": id})
}

// deleteStationSegments removes all segments for a station
func (s *Server) deleteStationSegments(c *gin.Context) {
	stationID := c.Param("stationId")

	deleted, err := s.store.DeleteByStation(c.Request.Context(), stationID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"deleted": deleted})
}

func validStatus(status string) bool {
	switch status {
	case domain.SegmentStatusPending, domain.SegmentStatusGenerating,
		domain.SegmentStatusReady, domain.SegmentStatusError:
		return true
	}
	return false
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type checkUsageRequest struct {
	UserID          string `json:"userId"`
	FeatureKey      string `json:"featureKey"`
	RequestedAmount int64  `json:"requestedAmount"`
}

func (s *Server) CheckUsage(c *gin.Context) {
	var req checkUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.quotaSvc.CheckUsage(c.Request.Context(), strings.TrimSpace(req.UserID), strings.TrimSpace(req.FeatureKey), req.RequestedAmount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type recordUsageRequest struct {
	UserID     string `json:"userId"`
	FeatureKey string `json:"featureKey"`
	Amount     int64  `json:"amount"`
}

func (s *Server) RecordUsage(c *gin.Context) {
	var req recordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.quotaSvc.RecordUsage(c.Request.Context(), strings.TrimSpace(req.UserID), strings.TrimSpace(req.FeatureKey), req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type slotRequest struct {
	UserID     string         `json:"userId"`
	FeatureKey string         `json:"featureKey"`
	SlotID     string         `json:"slotId"`
	Metadata   map[string]any `json:"metadata"`
}

func (s *Server) AllocateSlot(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.quotaSvc.AllocateSlot(c.Request.Context(), strings.TrimSpace(req.UserID), strings.TrimSpace(req.FeatureKey), strings.TrimSpace(req.SlotID), req.Metadata)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeallocateSlot(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.quotaSvc.DeallocateSlot(c.Request.Context(), strings.TrimSpace(req.UserID), strings.TrimSpace(req.FeatureKey), strings.TrimSpace(req.SlotID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetUserUsage(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	featureKey := strings.TrimSpace(c.Query("featureKey"))

	if featureKey != "" {
		resp, err := s.quotaSvc.GetUsageForFeature(c.Request.Context(), userID, featureKey)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	resp, err := s.quotaSvc.GetAllUsageForUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetAllUserUsage(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))

	resp, err := s.quotaSvc.GetAllUsageForUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	featuredomain "github.com/quotahub/quotad/internal/feature/domain"
)

type createFeatureRequest struct {
	FeatureKey  string  `json:"featureKey"`
	QuotaType   string  `json:"quotaType"`
	Limit       int64   `json:"limit"`
	ResetPeriod *string `json:"resetPeriod"`
	Description *string `json:"description"`
}

func (s *Server) CreateFeature(c *gin.Context) {
	var req createFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var resetPeriod *featuredomain.ResetPeriod
	if req.ResetPeriod != nil && strings.TrimSpace(*req.ResetPeriod) != "" {
		period := featuredomain.ResetPeriod(strings.TrimSpace(*req.ResetPeriod))
		resetPeriod = &period
	}

	resp, err := s.featureSvc.Register(c.Request.Context(), featuredomain.RegisterRequest{
		Key:         strings.TrimSpace(req.FeatureKey),
		QuotaType:   featuredomain.QuotaType(strings.TrimSpace(req.QuotaType)),
		Limit:       req.Limit,
		ResetPeriod: resetPeriod,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListFeatures(c *gin.Context) {
	resp, err := s.featureSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"features": resp})
}

func (s *Server) UpdateFeature(c *gin.Context) {
	key := strings.TrimSpace(c.Param("featureKey"))

	// The dashboard shapes update payloads dynamically, so immutable
	// fields are rejected from the raw body rather than silently dropped.
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	for _, field := range []string{"featureKey", "quotaType", "resetPeriod"} {
		if _, present := raw[field]; present {
			AbortWithError(c, featuredomain.ErrImmutableField)
			return
		}
	}

	req := featuredomain.UpdateRequest{Key: key}
	if value, present := raw["limit"]; present {
		var limit int64
		if err := json.Unmarshal(value, &limit); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.Limit = &limit
	}
	if value, present := raw["description"]; present {
		var description string
		if err := json.Unmarshal(value, &description); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.Description = &description
	}

	resp, err := s.featureSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

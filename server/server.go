// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the coverage check over HTTP.
package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/meridianmedia/prc/coverage"
	"github.com/meridianmedia/prc/metrics"
)

// Server answers coverage checks for a front-end widget.
type Server struct {
	settings  coverage.Provider
	evaluator *coverage.Evaluator
	collector *metrics.Collector
}

// NewServer creates a server. collector may be nil, in which case no
// /metrics endpoint is registered.
func NewServer(settings coverage.Provider, evaluator *coverage.Evaluator, collector *metrics.Collector) *Server {
	return &Server{
		settings:  settings,
		evaluator: evaluator,
		collector: collector,
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if s.collector != nil {
		r.Use(s.collector.Middleware())
		r.GET("/metrics", gin.WrapH(s.collector.Handler()))
	}

	r.GET("/healthz", s.healthz)
	r.GET("/api/settings", s.getSettings)
	r.POST("/api/check", s.checkPostcode)

	return r
}

// Run serves HTTP on addr until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("[prc] listening on %s", addr)

	return s.Handler().Run(addr)
}

func (s *Server) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CheckSettings are the display settings returned with every verdict.
type CheckSettings struct {
	SuccessMsg     string `json:"success_msg"`
	FailMsg        string `json:"fail_msg"`
	SuccessCTAText string `json:"success_cta_text"`
	SuccessCTAURL  string `json:"success_cta_url"`
	FailCTAText    string `json:"fail_cta_text"`
	FailCTAURL     string `json:"fail_cta_url"`
	ShowDistance   bool   `json:"show_distance"`
}

// CheckResponse is the data payload of a successful check.
type CheckResponse struct {
	Inside   bool          `json:"inside"`
	Distance *float64      `json:"distance,omitempty"`
	Unit     coverage.Unit `json:"unit,omitempty"`
	Settings CheckSettings `json:"settings"`
}

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorData struct {
	Message string `json:"message"`
}

type checkRequest struct {
	Postcode string `json:"postcode" form:"postcode"`
}

func (s *Server) checkPostcode(ctx *gin.Context) {
	var req checkRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, envelope{Data: errorData{Message: "Invalid request"}})

		return
	}

	cfg := s.settings.Current()

	res, err := s.evaluator.Check(ctx.Request.Context(), strings.TrimSpace(req.Postcode), cfg)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[prc] check %q failed: %v", req.Postcode, err)
		}

		ctx.JSON(status, envelope{Data: errorData{Message: coverage.UserMessage(err)}})

		return
	}

	resp := CheckResponse{
		Inside: res.Inside,
		Settings: CheckSettings{
			SuccessMsg:     cfg.SuccessMessage,
			FailMsg:        cfg.FailMessage,
			SuccessCTAText: cfg.SuccessCTAText,
			SuccessCTAURL:  cfg.SuccessCTAURL,
			FailCTAText:    cfg.FailCTAText,
			FailCTAURL:     cfg.FailCTAURL,
			ShowDistance:   cfg.ShowDistance && res.Distance != nil,
		},
	}

	if resp.Settings.ShowDistance {
		resp.Distance, resp.Unit = res.Distance, res.Unit
	}

	ctx.JSON(http.StatusOK, envelope{Success: true, Data: resp})
}

func statusFor(err error) int {
	switch {
	case coverage.IsValidationError(err), coverage.IsConfigurationError(err):
		return http.StatusBadRequest
	case errors.Is(err, coverage.ErrUndetermined):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Labels are the form texts of the widget.
type Labels struct {
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Button      string `json:"button"`
}

// SettingsResponse is what the widget needs to render itself.
type SettingsResponse struct {
	Mode            coverage.Mode   `json:"mode"`
	Unit            coverage.Unit   `json:"unit"`
	ShowDistance    bool            `json:"show_distance"`
	AllowedPrefixes string          `json:"allowed_prefixes"`
	Labels          Labels          `json:"labels"`
	Colors          coverage.Colors `json:"colors"`
}

func (s *Server) getSettings(ctx *gin.Context) {
	cfg := s.settings.Current()

	ctx.JSON(http.StatusOK, envelope{Success: true, Data: SettingsResponse{
		Mode:            cfg.Mode,
		Unit:            cfg.Unit,
		ShowDistance:    cfg.ShowDistance,
		AllowedPrefixes: cfg.AllowedPrefixes,
		Labels: Labels{
			Label:       cfg.FieldLabel,
			Placeholder: cfg.FieldPlaceholder,
			Button:      cfg.ButtonLabel,
		},
		Colors: cfg.Colors,
	}})
}

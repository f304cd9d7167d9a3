// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Mode selects how coverage is decided.
type Mode string

const (
	// ModePrefix matches the outward code against an allow-list.
	ModePrefix Mode = "prefix"
	// ModeRadius measures the distance from the base address.
	ModeRadius Mode = "radius"
)

// Unit is the unit of the configured radius.
type Unit string

const (
	UnitMiles Unit = "miles"
	UnitKm    Unit = "km"
)

// Colors are the widget colours handed to the front-end.
type Colors struct {
	SuccessBg string `json:"success_bg"`
	SuccessTx string `json:"success_tx"`
	FailBg    string `json:"fail_bg"`
	FailTx    string `json:"fail_tx"`
	BtnBg     string `json:"btn_bg"`
	BtnTx     string `json:"btn_tx"`
}

// Display holds the user facing texts returned with every check.
type Display struct {
	FieldLabel       string `json:"field_label"`
	FieldPlaceholder string `json:"field_placeholder"`
	ButtonLabel      string `json:"button_label"`
	SuccessMessage   string `json:"success_message"`
	FailMessage      string `json:"fail_message"`
	SuccessCTAText   string `json:"success_cta_text"`
	SuccessCTAURL    string `json:"success_cta_url"`
	FailCTAText      string `json:"fail_cta_text"`
	FailCTAURL       string `json:"fail_cta_url"`
}

// Config is the service area definition. It is read-only to the evaluator.
type Config struct {
	Mode            Mode    `json:"mode"`
	AllowedPrefixes string  `json:"allowed_prefixes"`
	BaseAddress     string  `json:"base_address"`
	Radius          float64 `json:"radius"`
	Unit            Unit    `json:"unit"`
	ShowDistance    bool    `json:"show_distance"`
	ContactEmail    string  `json:"contact_email"`

	Display
	Colors
}

// DefaultConfig returns the settings used for every key missing from the
// settings file.
func DefaultConfig() Config {
	return Config{
		Mode:            ModePrefix,
		AllowedPrefixes: "FY",
		Radius:          15,
		Unit:            UnitMiles,
		Display: Display{
			FieldLabel:       "Postcode",
			FieldPlaceholder: "Enter postcode",
			ButtonLabel:      "Check",
			SuccessMessage:   "You are covered!",
			FailMessage:      "Sorry, we don't regularly cover this area",
			SuccessCTAText:   "Book now",
			SuccessCTAURL:    "/book",
			FailCTAText:      "But we can still come",
			FailCTAURL:       "/contact",
		},
		Colors: Colors{
			SuccessBg: "#e6ffed",
			SuccessTx: "#0a5d2a",
			FailBg:    "#ffefef",
			FailTx:    "#7a0a0a",
			BtnBg:     "#111111",
			BtnTx:     "#ffffff",
		},
	}
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}){1,2}$`)

// Sanitize trims text fields and replaces out-of-range values with their
// defaults.
func (c Config) Sanitize() Config {
	def := DefaultConfig()

	c.Mode = Mode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	if c.Mode != ModePrefix && c.Mode != ModeRadius {
		c.Mode = def.Mode
	}

	c.Unit = Unit(strings.ToLower(strings.TrimSpace(string(c.Unit))))
	if c.Unit != UnitMiles && c.Unit != UnitKm {
		c.Unit = def.Unit
	}

	if c.Radius < 0 {
		c.Radius = 0
	}

	for _, s := range []*string{
		&c.AllowedPrefixes, &c.BaseAddress, &c.ContactEmail,
		&c.FieldLabel, &c.FieldPlaceholder, &c.ButtonLabel,
		&c.SuccessMessage, &c.FailMessage,
		&c.SuccessCTAText, &c.SuccessCTAURL, &c.FailCTAText, &c.FailCTAURL,
	} {
		*s = strings.TrimSpace(*s)
	}

	colors := []struct{ value, fallback *string }{
		{&c.SuccessBg, &def.SuccessBg},
		{&c.SuccessTx, &def.SuccessTx},
		{&c.FailBg, &def.FailBg},
		{&c.FailTx, &def.FailTx},
		{&c.BtnBg, &def.BtnBg},
		{&c.BtnTx, &def.BtnTx},
	}
	for _, col := range colors {
		*col.value = strings.TrimSpace(*col.value)
		if !hexColor.MatchString(*col.value) {
			*col.value = *col.fallback
		}
	}

	return c
}

// ParseConfig decodes a JSON settings document over the defaults and
// sanitizes the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding settings: %w", err)
	}

	return cfg.Sanitize(), nil
}

// LoadConfig reads a JSON settings file. Keys absent from the file keep
// their default value.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading settings file: %w", err)
	}

	return ParseConfig(data)
}

// Provider gives read access to the current configuration.
type Provider interface {
	Current() Config
}

// StaticProvider always returns the same configuration.
type StaticProvider Config

func (p StaticProvider) Current() Config {
	return Config(p)
}

// FileProvider serves the settings file, reloading it whenever its
// modification time changes. A file that fails to reload keeps the last
// good configuration.
type FileProvider struct {
	path string

	mu      sync.Mutex
	cfg     Config
	modTime time.Time
	onError func(error)
}

// NewFileProvider loads path and returns a provider for it. onError, when
// not nil, receives reload failures.
func NewFileProvider(path string, onError func(error)) (*FileProvider, error) {
	p := &FileProvider{path: path, onError: onError}
	if err := p.reload(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *FileProvider) reload() error {
	info, err := os.Stat(p.path)
	if err != nil {
		return fmt.Errorf("reading settings file: %w", err)
	}

	if !p.modTime.IsZero() && info.ModTime().Equal(p.modTime) {
		return nil
	}

	cfg, err := LoadConfig(p.path)
	if err != nil {
		return err
	}

	p.cfg, p.modTime = cfg, info.ModTime()

	return nil
}

func (p *FileProvider) Current() Config {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.reload(); err != nil && p.onError != nil {
		p.onError(err)
	}

	return p.cfg
}

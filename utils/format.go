// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

// Package utils holds small formatting helpers for command output.
package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BritishEnglish)

// FormatInt formats an integer with thousands separators for human
// readability.
func FormatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

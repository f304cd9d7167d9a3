// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/meridianmedia/prc/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}

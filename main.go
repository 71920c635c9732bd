// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for psqlite.
//
// Usage:
//
//	go run . [flags]
//	./psqlite [flags]
//
// This launches the psqlite CLI. See --help for options.
package main

import (
	"fmt"
	"os"

	"github.com/River-Szasz/psqlite-sqlcipher/internal/cli"
	"github.com/River-Szasz/psqlite-sqlcipher/internal/logging"
)

// version is set at build time using -ldflags, e.g.:
// go build -ldflags "-X main.version=1.2.3"
var version = "dev"

func main() {
	if os.Getenv("PSQLITE_SHOW_VERSION") == "1" {
		fmt.Fprintf(os.Stderr, "psqlite version: %s\n", version)
	}

	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}

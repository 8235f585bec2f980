// Package migrations embeds the goose schema migrations for every module.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Dir is the directory inside FS that goose runs against.
const Dir = "."

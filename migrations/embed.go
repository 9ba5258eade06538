// Package migrations содержит SQL миграции storefront, встроенные в бинарник
package migrations

import "embed"

// FS содержит миграции goose
//
//go:embed *.sql
var FS embed.FS

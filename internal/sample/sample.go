// Package sample carries the bundled default dataset shown when no other
// source loads.
package sample

import (
	_ "embed"

	"github.com/starford/aquatrack/internal/models"
	"github.com/starford/aquatrack/internal/parser"
)

//go:embed default.json
var raw []byte

// Raw returns a copy of the bundled document text.
func Raw() []byte {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

// Document parses the bundled dataset. It panics if the embedded file is
// invalid, which can only happen at build time.
func Document() *models.Document {
	doc, err := parser.Parse(raw)
	if err != nil {
		panic("sample: bundled dataset is invalid: " + err.Error())
	}
	return doc
}

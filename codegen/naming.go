package codegen

import (
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	rules = inflect.NewDefaultRuleset()

	acronyms = map[string]string{
		"api":  "API",
		"html": "HTML",
		"http": "HTTP",
		"id":   "ID",
		"ip":   "IP",
		"json": "JSON",
		"sql":  "SQL",
		"url":  "URL",
		"uuid": "UUID",
		"xml":  "XML",
	}
)

// pascal converts a snake or kebab case name to PascalCase, keeping common
// acronyms upper case.
func pascal(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	var (
		b     strings.Builder
		title = cases.Title(language.English, cases.NoLower)
	)
	for _, w := range words {
		if a, ok := acronyms[strings.ToLower(w)]; ok {
			b.WriteString(a)
			continue
		}
		b.WriteString(title.String(w))
	}
	return b.String()
}

// typeName returns the descriptor type name of a table. The last word of
// the table name is singularized: "cake_fillings" becomes "CakeFilling".
func typeName(table string) string {
	i := strings.LastIndexAny(table, "_-")
	return pascal(table[:i+1] + rules.Singularize(table[i+1:]))
}

// fileName returns the name of the file generated for a table.
func fileName(table string) string {
	return strings.ToLower(strings.ReplaceAll(table, "-", "_")) + ".go"
}

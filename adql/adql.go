// Package adql builds ADQL query text for TAP services.
//
// ADQL is the SQL dialect TAP endpoints accept. This package covers the
// small slice of it registry queries need: literal escaping, the RegTAP
// user-defined functions, and a deterministic SELECT builder. It performs
// no parsing and no validation of server-side semantics - the service
// remains the authority on what a query means.
package adql

import (
	"fmt"
	"strings"
)

// Escape doubles single quotes so s can be embedded in an ADQL string
// literal. Idempotent on strings without quotes.
func Escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Quote escapes s and wraps it in single quotes.
func Quote(s string) string {
	return "'" + Escape(s) + "'"
}

// ContainsWord returns a predicate matching rows whose column contains the
// given word, using the RegTAP ivo_hasword user-defined function.
func ContainsWord(column, word string) string {
	return fmt.Sprintf("1 = ivo_hasword(%s, %s)", column, Quote(word))
}

// HasListItem returns a predicate matching rows whose hash-separated list
// column contains item, using ivo_hashlist_has. RegTAP stores wavebands
// and similar multi-valued fields as #-separated lists.
func HasListItem(column, item string) string {
	return fmt.Sprintf("1 = ivo_hashlist_has(%s, %s)", column, Quote(item))
}

// CaseMatch returns a case-insensitive pattern predicate using
// ivo_nocasematch. The pattern uses SQL LIKE wildcards (% and _).
func CaseMatch(column, pattern string) string {
	return fmt.Sprintf("1 = ivo_nocasematch(%s, %s)", column, Quote(pattern))
}

// Like returns a plain LIKE predicate with the pattern quoted.
func Like(column, pattern string) string {
	return fmt.Sprintf("%s LIKE %s", column, Quote(pattern))
}

// Eq returns an equality predicate with the value quoted.
func Eq(column, value string) string {
	return fmt.Sprintf("%s = %s", column, Quote(value))
}

// In returns an IN predicate with every value quoted. Returns a
// never-matching predicate for an empty value list, which keeps callers
// from accidentally selecting everything.
func In(column string, values []string) string {
	if len(values) == 0 {
		return "1 = 0"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = Quote(v)
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(quoted, ", "))
}

// Any joins predicates with OR, parenthesizing the result.
func Any(predicates ...string) string {
	if len(predicates) == 1 {
		return predicates[0]
	}
	return "(" + strings.Join(predicates, " OR ") + ")"
}

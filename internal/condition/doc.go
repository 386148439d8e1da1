// Package condition evaluates event trigger expressions.
//
// The language is deliberately tiny and frozen:
//
//	expr    := or
//	or      := and { "||" and }
//	and     := rel { "&&" rel }
//	rel     := unary [ cmpop unary | "in" unary ]
//	unary   := [ "-" ] primary
//	primary := NUMBER | STRING | "true" | "false" | IDENT
//	         | "includes" "(" or "," or ")" | "(" or ")"
//	cmpop   := ">" | "<" | ">=" | "<=" | "==" | "!=" | "===" | "!=="
//
// Identifiers resolve against a fixed Context: month, budget, doom,
// tagCount and activeTags. Strings are single- or double-quoted.
//
// Evaluate is total. An empty expression is true, anything that fails to
// parse or type-check is false, and nothing panics.
package condition

// Package search implements the query boundary: an AST of boolean
// operators, grouping, field selectors, terms, and ranges, compiled
// against a per-(type, field) mapper registry into a Meilisearch
// filter expression AND-composed with the requestor's visibility
// predicate. Grounded on third_party/search's Meilisearch wrapper.
package search

// Node is one AST node of a parsed query. The parser that produces
// these from raw query text is an external collaborator; this package owns everything
// from the AST onward.
type Node interface {
	isNode()
}

// And is the conjunction of Children.
type And struct{ Children []Node }

// Or is the disjunction of Children.
type Or struct{ Children []Node }

// Not negates Child.
type Not struct{ Child Node }

// Prohibit marks Child as excluded from the result set — the source
// grammar's "-term" operator, kept distinct from Not because it binds
// tighter (applies to a single clause, not a subexpression).
type Prohibit struct{ Child Node }

// Group is an explicit parenthesized subexpression; it compiles to its
// child wrapped in parentheses, and errors from the child are returned
// unchanged.
type Group struct{ Child Node }

// Field scopes Value to a named attribute, e.g. tag:"foo*".
type Field struct {
	Name  string
	Value Node
}

// Term is a bare word, optionally wildcarded ("foo*"). A Term that
// appears outside a Field is the field-required error case.
type Term struct {
	Value    string
	Wildcard bool
}

// Phrase is a quoted multi-word literal; phrase delimiters are
// stripped during compilation, not during parsing.
type Phrase struct{ Value string }

// Range is a bound query, `[Low TO High]`. Wildcards are not permitted
// in either bound (the wildcards-in-range error).
type Range struct{ Low, High string }

func (And) isNode()      {}
func (Or) isNode()       {}
func (Not) isNode()      {}
func (Prohibit) isNode() {}
func (Group) isNode()    {}
func (Field) isNode()    {}
func (Term) isNode()     {}
func (Phrase) isNode()   {}
func (Range) isNode()    {}

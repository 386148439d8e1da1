package condition

// Node is a parsed expression. The interface is sealed to this package.
type Node interface {
	node()
}

// NumberLit is a numeric literal.
type NumberLit struct{ Value float64 }

// StringLit is a quoted string literal.
type StringLit struct{ Value string }

// BoolLit is true or false.
type BoolLit struct{ Value bool }

// Ident references a context variable.
type Ident struct{ Name string }

// Compare is a binary comparison.
type Compare struct {
	Op    string
	Left  Node
	Right Node
}

// Logical is && or ||.
type Logical struct {
	Op    string
	Left  Node
	Right Node
}

// Membership is `needle in haystack`.
type Membership struct {
	Needle   Node
	Haystack Node
}

// Includes is includes(collection, value).
type Includes struct {
	Collection Node
	Value      Node
}

// Negate is unary minus on a numeric operand.
type Negate struct{ Operand Node }

func (NumberLit) node()  {}
func (StringLit) node()  {}
func (BoolLit) node()    {}
func (Ident) node()      {}
func (Compare) node()    {}
func (Logical) node()    {}
func (Membership) node() {}
func (Includes) node()   {}
func (Negate) node()     {}

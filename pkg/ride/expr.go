// Package ride implements the compiled-expression evaluator and
// complexity estimator: a deterministic, pure,
// budget-bounded interpreter over an already-parsed, already
// type-checked expression tree. It consumes no source text and does
// no static type checking — both stay out of scope.
package ride

// Header identifies the callee of a FunctionCall node: either a
// built-in (Native) selected by its stable numeric id, or a
// user-defined function (User) selected by name.
type Header struct {
	Native uint16
	User   string
	IsUser bool
}

func NativeHeader(id uint16) Header { return Header{Native: id} }
func UserHeader(name string) Header { return Header{User: name, IsUser: true} }

// NodeKind tags the variant of an Expr node.
type NodeKind int

const (
	ConstLong NodeKind = iota
	ConstByteStr
	ConstString
	True
	False
	Ref
	Block
	If
	FunctionCall
	GetField
	SyncInvoke
)

// Expr is a node of the compiled expression tree. Only the fields
// relevant to its Kind are populated.
type Expr struct {
	Kind NodeKind

	// ConstLong
	LongValue int64

	// ConstByteStr
	BytesValue []byte
	LimitFlag  bool // ConstByteStr/ConstString: reduce-limit flag

	// ConstString
	StringValue string

	// Ref
	RefName string

	// Block: `let <LetName> = <LetValue>; <Body>`
	LetName  string
	LetValue *Expr
	Body     *Expr

	// If
	Cond *Expr
	Then *Expr
	Else *Expr

	// FunctionCall
	Call Header
	Args []*Expr

	// GetField
	Target *Expr
	Field  string

	// SyncInvoke: `invoke(InvokeDApp, InvokeFunction, InvokeArgs,
	// InvokePayments)`, the compiled form of a dApp-to-dApp synchronous
	// call.
	InvokeDApp     *Expr
	InvokeFunction string
	InvokeArgs     []*Expr
	InvokePayments []*Expr
}

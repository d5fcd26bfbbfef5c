package config

const SourceFileExt = ".ht"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".ht", ".hetu"}

// Reserved identifier prefixes for synthesized names.
const (
	ExternalPrefix  = "__external__"
	GetterPrefix    = "__get__"
	SetterPrefix    = "__set__"
	ConstructorName = "__construct__"
	LoopIndexPrefix = "__i"
)

// Names with fixed meaning inside class and function scopes.
const (
	ThisName  = "this"
	SuperName = "super"
)

// Built-in function names
const (
	PrintFuncName  = "print"
	TypeOfFuncName = "typeof"
)

// Built-in type names
const (
	NumberTypeName    = "num"
	BooleanTypeName   = "bool"
	StringTypeName    = "String"
	ListTypeName      = "List"
	MapTypeName       = "Map"
	ObjectTypeName    = "Object"
	AnyTypeName       = "any"
	VoidTypeName      = "void"
	FunctionTypeName  = "function"
	NullTypeName      = "null"
	NamespaceTypeName = "NAMESPACE"
	ClassTypeName     = "CLASS"
)

// GlobalNamespaceName is the fully qualified name of the root namespace.
const GlobalNamespaceName = "global"

package main

import "fmt"

// The vm language has a closed set of fourteen commands, grouped in four
// categories:
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// * Memory access commands: push segment index, pop segment index, where segment is one of
//   argument, local, static, constant, this, that, pointer, temp.
// * Program flow commands: label l, goto l, if-goto l.
// * Function calling commands: function f k, call f n, return.
// Each source line holds at most one command, possibly followed by a // comment.

type CommandTP int

const (
	// EmptyCommandTP marks a line that held only whitespace or a comment.
	EmptyCommandTP CommandTP = iota
	ArithmeticCommandTP
	PushCommandTP
	PopCommandTP
	LabelCommandTP
	GotoCommandTP
	IfGotoCommandTP
	FunctionCommandTP
	CallCommandTP
	ReturnCommandTP
)

var commandsMap = map[string]CommandTP{
	"add":      ArithmeticCommandTP,
	"sub":      ArithmeticCommandTP,
	"neg":      ArithmeticCommandTP,
	"eq":       ArithmeticCommandTP,
	"gt":       ArithmeticCommandTP,
	"lt":       ArithmeticCommandTP,
	"and":      ArithmeticCommandTP,
	"or":       ArithmeticCommandTP,
	"not":      ArithmeticCommandTP,
	"push":     PushCommandTP,
	"pop":      PopCommandTP,
	"label":    LabelCommandTP,
	"goto":     GotoCommandTP,
	"if-goto":  IfGotoCommandTP,
	"function": FunctionCommandTP,
	"call":     CallCommandTP,
	"return":   ReturnCommandTP,
}

type SegmentTP int

const (
	ConstantSegmentTP SegmentTP = iota
	LocalSegmentTP
	ArgumentSegmentTP
	ThisSegmentTP
	ThatSegmentTP
	StaticSegmentTP
	TempSegmentTP
	PointerSegmentTP
)

var segmentsMap = map[string]SegmentTP{
	"constant": ConstantSegmentTP,
	"local":    LocalSegmentTP,
	"argument": ArgumentSegmentTP,
	"this":     ThisSegmentTP,
	"that":     ThatSegmentTP,
	"static":   StaticSegmentTP,
	"temp":     TempSegmentTP,
	"pointer":  PointerSegmentTP,
}

// segmentRanges holds the upper bound (inclusive) for segments whose index
// range is fixed by the memory map. Segments not listed accept any
// non-negative index.
var segmentRanges = map[SegmentTP]int{
	TempSegmentTP:    7,
	PointerSegmentTP: 1,
}

// Command is one parsed vm command. Which fields are meaningful depends on Tp:
// Op for arithmetic commands, Segment and Index for push/pop, Symbol for
// program flow and named function commands, Count for function and call.
// Line and Content always point back at the source line that produced it.
type Command struct {
	Tp      CommandTP
	Op      string
	Segment SegmentTP
	Index   int
	Symbol  string
	Count   int
	Line    int
	Content string
}

func (command Command) String() string {
	return fmt.Sprintf("Command: {Tp: %d, Content: %s, Line: %d}", command.Tp, command.Content, command.Line)
}

type ParseErrKind int

const (
	UnknownCommandErr ParseErrKind = iota
	MalformedMemoryAccessErr
	SegmentRangeErr
	MalformedIdentifierErr
	MalformedArgCountErr
	UnexpectedTokenErr
)

var parseErrMessages = map[ParseErrKind]string{
	UnknownCommandErr:        "unknown command",
	MalformedMemoryAccessErr: "malformed memory access",
	SegmentRangeErr:          "segment index out of range",
	MalformedIdentifierErr:   "malformed identifier",
	MalformedArgCountErr:     "malformed argument count",
	UnexpectedTokenErr:       "unexpected token",
}

type ParseError struct {
	Kind ParseErrKind
	Line int
	Near string
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("SyntaxError: %s near '%s' at line %d", parseErrMessages[err.Kind], err.Near, err.Line)
}

// UnresolvedContextError reports a command that needs an enclosing function
// (for its qualified label or its argument/local base) issued before any
// function command established one.
type UnresolvedContextError struct {
	Line    int
	Content string
}

func (err *UnresolvedContextError) Error() string {
	return fmt.Sprintf("UnresolvedContext: '%s' at line %d needs an enclosing function", err.Content, err.Line)
}

package main

import (
	"fmt"
	"strconv"
)

// The code generator maps each vm command to a self-contained block of hack
// assembly. The abstract machine it targets: SP lives at RAM[0] and points at
// the next free stack slot, LCL/ARG/THIS/THAT at RAM[1..4] hold the segment
// bases, temp is the fixed region RAM[5..12], and R13/R14 are scratch
// registers for pop addressing and the return address.

// TranslationContext carries the cross-command state of one translation run:
// the source file base name scoping static variables, the enclosing function
// name qualifying branch labels, and the counters that keep generated labels
// unique. Counters survive file boundaries so a multi-file program never
// reuses a label.
type TranslationContext struct {
	fileName        string
	currentFunction string
	compareIDs      map[string]int
	returnID        int
}

type CodeGenerator struct {
	ctx TranslationContext
	out []string
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{ctx: TranslationContext{compareIDs: map[string]int{}}}
}

var segmentBases = map[SegmentTP]string{
	LocalSegmentTP:    "LCL",
	ArgumentSegmentTP: "ARG",
	ThisSegmentTP:     "THIS",
	ThatSegmentTP:     "THAT",
}

var binaryOps = map[string]string{
	"add": "M=D+M",
	"sub": "M=M-D",
	"and": "M=D&M",
	"or":  "M=D|M",
}

var unaryOps = map[string]string{
	"neg": "M=-M",
	"not": "M=!M",
}

var compareJumps = map[string]string{
	"eq": "JEQ",
	"gt": "JGT",
	"lt": "JLT",
}

// Translate emits assembly for commands in source order. sourceName is the
// base name of the file the commands came from; it scopes the static segment.
// The context is mutated across the call, so calling Translate again on the
// same generator continues the run with the next file.
func (gen *CodeGenerator) Translate(commands []Command, sourceName string) ([]string, error) {
	gen.ctx.fileName = sourceName
	gen.out = nil
	for _, command := range commands {
		var err error
		switch command.Tp {
		case ArithmeticCommandTP:
			gen.writeArithmetic(command)
		case PushCommandTP:
			err = gen.writePush(command)
		case PopCommandTP:
			err = gen.writePop(command)
		case LabelCommandTP:
			err = gen.writeLabel(command)
		case GotoCommandTP:
			err = gen.writeGoto(command)
		case IfGotoCommandTP:
			err = gen.writeIfGoto(command)
		case FunctionCommandTP:
			gen.writeFunction(command)
		case CallCommandTP:
			gen.emit("// " + command.Content)
			gen.writeCall(command.Symbol, command.Count)
		case ReturnCommandTP:
			err = gen.writeReturn(command)
		}
		if err != nil {
			return nil, err
		}
	}
	return gen.out, nil
}

func (gen *CodeGenerator) emit(lines ...string) {
	gen.out = append(gen.out, lines...)
}

// pushD appends D to the stack; popD retracts the stack into D.
func (gen *CodeGenerator) pushD() {
	gen.emit("@SP", "A=M", "M=D", "@SP", "M=M+1")
}

func (gen *CodeGenerator) popD() {
	gen.emit("@SP", "AM=M-1", "D=M")
}

// needFunction guards commands whose meaning depends on an enclosing
// function: qualified labels and the argument/local bases are undefined
// before the first function command.
func (gen *CodeGenerator) needFunction(command Command) error {
	if gen.ctx.currentFunction == "" {
		return &UnresolvedContextError{Line: command.Line, Content: command.Content}
	}
	return nil
}

func (gen *CodeGenerator) staticSymbol(index int) string {
	return fmt.Sprintf("%s.%d", gen.ctx.fileName, index)
}

func pointerBase(index int) string {
	if index == 0 {
		return "THIS"
	}
	return "THAT"
}

func (gen *CodeGenerator) writePush(command Command) error {
	gen.emit("// " + command.Content)
	switch command.Segment {
	case ConstantSegmentTP:
		gen.emit("@"+strconv.Itoa(command.Index), "D=A")
	case LocalSegmentTP, ArgumentSegmentTP:
		if err := gen.needFunction(command); err != nil {
			return err
		}
		fallthrough
	case ThisSegmentTP, ThatSegmentTP:
		gen.emit("@"+strconv.Itoa(command.Index), "D=A", "@"+segmentBases[command.Segment], "A=D+M", "D=M")
	case StaticSegmentTP:
		gen.emit("@"+gen.staticSymbol(command.Index), "D=M")
	case TempSegmentTP:
		gen.emit("@"+strconv.Itoa(5+command.Index), "D=M")
	case PointerSegmentTP:
		gen.emit("@"+pointerBase(command.Index), "D=M")
	}
	gen.pushD()
	return nil
}

func (gen *CodeGenerator) writePop(command Command) error {
	gen.emit("// " + command.Content)
	switch command.Segment {
	case ConstantSegmentTP:
		// The constant segment is virtual; popping it only drops the value.
		gen.emit("@SP", "M=M-1")
	case LocalSegmentTP, ArgumentSegmentTP:
		if err := gen.needFunction(command); err != nil {
			return err
		}
		fallthrough
	case ThisSegmentTP, ThatSegmentTP:
		gen.emit("@"+strconv.Itoa(command.Index), "D=A", "@"+segmentBases[command.Segment], "D=D+M", "@R13", "M=D")
		gen.popD()
		gen.emit("@R13", "A=M", "M=D")
	case StaticSegmentTP:
		gen.popD()
		gen.emit("@"+gen.staticSymbol(command.Index), "M=D")
	case TempSegmentTP:
		gen.popD()
		gen.emit("@"+strconv.Itoa(5+command.Index), "M=D")
	case PointerSegmentTP:
		gen.popD()
		gen.emit("@"+pointerBase(command.Index), "M=D")
	}
	return nil
}

// writeArithmetic rewrites the top stack slots in place instead of going
// through a full pop/push pair. Binary operators retract SP by one, unary
// operators leave it alone, comparisons branch through a fresh label pair
// drawn from the operator's own counter.
func (gen *CodeGenerator) writeArithmetic(command Command) {
	gen.emit("// " + command.Content)
	if op, ok := binaryOps[command.Op]; ok {
		gen.emit("@SP", "AM=M-1", "D=M", "A=A-1", op)
		return
	}
	if op, ok := unaryOps[command.Op]; ok {
		gen.emit("@SP", "A=M-1", op)
		return
	}
	jump := compareJumps[command.Op]
	id := gen.ctx.compareIDs[command.Op]
	gen.ctx.compareIDs[command.Op]++
	trueLabel := fmt.Sprintf("$%s_true_%d", command.Op, id)
	endLabel := fmt.Sprintf("$%s_end_%d", command.Op, id)
	gen.emit(
		"@SP", "AM=M-1", "D=M",
		"A=A-1", "D=M-D", // D = x - y
		"@"+trueLabel, "D;"+jump,
		"@SP", "A=M-1", "M=0",
		"@"+endLabel, "0;JMP",
		"("+trueLabel+")",
		"@SP", "A=M-1", "M=-1",
		"("+endLabel+")",
	)
}

func (gen *CodeGenerator) qualifiedLabel(symbol string) string {
	return gen.ctx.currentFunction + "$" + symbol
}

func (gen *CodeGenerator) writeLabel(command Command) error {
	if err := gen.needFunction(command); err != nil {
		return err
	}
	gen.emit("// " + command.Content)
	gen.emit("(" + gen.qualifiedLabel(command.Symbol) + ")")
	return nil
}

func (gen *CodeGenerator) writeGoto(command Command) error {
	if err := gen.needFunction(command); err != nil {
		return err
	}
	gen.emit("// " + command.Content)
	gen.emit("@"+gen.qualifiedLabel(command.Symbol), "0;JMP")
	return nil
}

func (gen *CodeGenerator) writeIfGoto(command Command) error {
	if err := gen.needFunction(command); err != nil {
		return err
	}
	gen.emit("// " + command.Content)
	gen.popD()
	gen.emit("@"+gen.qualifiedLabel(command.Symbol), "D;JNE")
	return nil
}

// writeFunction plants the function entry label, zero-initializes the
// declared locals with unrolled pushes, and makes the function current for
// label qualification from here on.
func (gen *CodeGenerator) writeFunction(command Command) {
	gen.emit("// " + command.Content)
	gen.emit("(" + command.Symbol + ")")
	for i := 0; i < command.Count; i++ {
		gen.emit("@SP", "A=M", "M=0", "@SP", "M=M+1")
	}
	gen.ctx.currentFunction = command.Symbol
}

// writeCall saves the caller frame (return address plus the four bases),
// repositions ARG below the pushed arguments and LCL at the current SP, and
// jumps to the callee. The return address label lands right after the jump
// and is unique per call site. The bootstrap call reuses this directly.
func (gen *CodeGenerator) writeCall(name string, nArgs int) {
	returnLabel := fmt.Sprintf("$%s_return_%d", name, gen.ctx.returnID)
	gen.ctx.returnID++
	gen.emit("@"+returnLabel, "D=A")
	gen.pushD()
	for _, base := range []string{"LCL", "ARG", "THIS", "THAT"} {
		gen.emit("@"+base, "D=M")
		gen.pushD()
	}
	// ARG = SP - nArgs - 5; the 5 covers the frame just pushed.
	gen.emit("@SP", "D=M", "@"+strconv.Itoa(nArgs+5), "D=D-A", "@ARG", "M=D")
	gen.emit("@SP", "D=M", "@LCL", "M=D")
	gen.emit("@"+name, "0;JMP")
	gen.emit("(" + returnLabel + ")")
}

// writeReturn parks the frame base in R13 and the return address in R14
// before touching the stack; grabbing the return address first matters when
// the callee took no arguments, because *ARG then overwrites its slot.
func (gen *CodeGenerator) writeReturn(command Command) error {
	if err := gen.needFunction(command); err != nil {
		return err
	}
	gen.emit("// " + command.Content)
	gen.emit(
		"@LCL", "D=M", "@R13", "M=D", // R13 = frame
		"@5", "A=D-A", "D=M", "@R14", "M=D", // R14 = *(frame-5), the return address
	)
	gen.popD()
	gen.emit(
		"@ARG", "A=M", "M=D", // *ARG = return value
		"@ARG", "D=M", "@SP", "M=D+1", // SP = ARG+1
		"@R13", "AM=M-1", "D=M", "@THAT", "M=D",
		"@R13", "AM=M-1", "D=M", "@THIS", "M=D",
		"@R13", "AM=M-1", "D=M", "@ARG", "M=D",
		"@R13", "AM=M-1", "D=M", "@LCL", "M=D",
		"@R14", "A=M", "0;JMP",
	)
	return nil
}

package computer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hack_vm_translator/util"
)

// An interpreter for symbolic hack assembly. It resolves labels, variables
// and the predefined symbols the same way the hack assembler does, but
// instead of encoding instructions to binary it keeps them in decoded form
// and executes them directly. That makes it usable as a test back end: load
// the output of the vm translator, run it, inspect RAM.

const (
	ramSize = 32768
	// Variables are allocated from RAM[16] upwards, after R0-R15.
	variableBase = 16
)

var predefinedSymbols = map[string]int16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"R0":     0,
	"R1":     1,
	"R2":     2,
	"R3":     3,
	"R4":     4,
	"R5":     5,
	"R6":     6,
	"R7":     7,
	"R8":     8,
	"R9":     9,
	"R10":    10,
	"R11":    11,
	"R12":    12,
	"R13":    13,
	"R14":    14,
	"R15":    15,
	"SCREEN": 16384,
	"KBD":    24576,
}

// compFuncs covers the comp field of a C instruction, including the
// commutative spellings. M reads RAM at the current A.
var compFuncs = map[string]func(m *Machine) int16{
	"0":   func(m *Machine) int16 { return 0 },
	"1":   func(m *Machine) int16 { return 1 },
	"-1":  func(m *Machine) int16 { return -1 },
	"D":   func(m *Machine) int16 { return m.D },
	"A":   func(m *Machine) int16 { return m.A },
	"M":   func(m *Machine) int16 { return m.at(m.A) },
	"!D":  func(m *Machine) int16 { return ^m.D },
	"!A":  func(m *Machine) int16 { return ^m.A },
	"!M":  func(m *Machine) int16 { return ^m.at(m.A) },
	"-D":  func(m *Machine) int16 { return -m.D },
	"-A":  func(m *Machine) int16 { return -m.A },
	"-M":  func(m *Machine) int16 { return -m.at(m.A) },
	"D+1": func(m *Machine) int16 { return m.D + 1 },
	"A+1": func(m *Machine) int16 { return m.A + 1 },
	"M+1": func(m *Machine) int16 { return m.at(m.A) + 1 },
	"D-1": func(m *Machine) int16 { return m.D - 1 },
	"A-1": func(m *Machine) int16 { return m.A - 1 },
	"M-1": func(m *Machine) int16 { return m.at(m.A) - 1 },
	"D+A": func(m *Machine) int16 { return m.D + m.A },
	"A+D": func(m *Machine) int16 { return m.D + m.A },
	"D+M": func(m *Machine) int16 { return m.D + m.at(m.A) },
	"M+D": func(m *Machine) int16 { return m.D + m.at(m.A) },
	"D-A": func(m *Machine) int16 { return m.D - m.A },
	"A-D": func(m *Machine) int16 { return m.A - m.D },
	"D-M": func(m *Machine) int16 { return m.D - m.at(m.A) },
	"M-D": func(m *Machine) int16 { return m.at(m.A) - m.D },
	"D&A": func(m *Machine) int16 { return m.D & m.A },
	"A&D": func(m *Machine) int16 { return m.D & m.A },
	"D&M": func(m *Machine) int16 { return m.D & m.at(m.A) },
	"M&D": func(m *Machine) int16 { return m.D & m.at(m.A) },
	"D|A": func(m *Machine) int16 { return m.D | m.A },
	"A|D": func(m *Machine) int16 { return m.D | m.A },
	"D|M": func(m *Machine) int16 { return m.D | m.at(m.A) },
	"M|D": func(m *Machine) int16 { return m.D | m.at(m.A) },
}

var jumpFuncs = map[string]func(v int16) bool{
	"JGT": func(v int16) bool { return v > 0 },
	"JEQ": func(v int16) bool { return v == 0 },
	"JGE": func(v int16) bool { return v >= 0 },
	"JLT": func(v int16) bool { return v < 0 },
	"JNE": func(v int16) bool { return v != 0 },
	"JLE": func(v int16) bool { return v <= 0 },
	"JMP": func(v int16) bool { return true },
}

type destFlags struct {
	a, d, m bool
}

type instruction struct {
	isA   bool
	value int16
	dest  destFlags
	comp  func(m *Machine) int16
	jump  func(v int16) bool
	text  string
}

type Machine struct {
	A, D int16
	PC   int
	RAM  [ramSize]int16
	rom  []instruction
}

func NewMachine() *Machine {
	return &Machine{}
}

func (m *Machine) at(addr int16) int16 {
	return m.RAM[int(addr)&(ramSize-1)]
}

// StackTop returns the value just below the stack pointer, following the
// convention that RAM[0] points at the next free slot.
func (m *Machine) StackTop() int16 {
	return m.at(m.RAM[0] - 1)
}

type sourceLine struct {
	text string
	line int
}

// LoadAssembly decodes a symbolic assembly program into the machine's rom
// and resets the registers. Two passes: the first collects label addresses,
// the second resolves @ operands and decodes C instructions.
func (m *Machine) LoadAssembly(lines []string) error {
	var srcs []sourceLine
	labels := map[string]int16{}
	for i, raw := range lines {
		text := raw
		if idx := strings.Index(text, "//"); idx != -1 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		if len(text) == 0 {
			continue
		}
		if text[0] == '(' {
			label, err := parseLabelDeclare(text)
			if err != nil {
				return loadErr(i+1, raw, err)
			}
			if _, exist := labels[label]; exist {
				return loadErr(i+1, raw, errors.New("duplicate label"))
			}
			labels[label] = int16(len(srcs))
			continue
		}
		srcs = append(srcs, sourceLine{text: text, line: i + 1})
	}
	variables := map[string]int16{}
	nextVariable := int16(variableBase)
	rom := make([]instruction, 0, len(srcs))
	for _, src := range srcs {
		var ins instruction
		var err error
		if src.text[0] == '@' {
			ins, err = decodeAInstruction(src.text, labels, variables, &nextVariable)
		} else {
			ins, err = decodeCInstruction(src.text)
		}
		if err != nil {
			return loadErr(src.line, src.text, err)
		}
		ins.text = src.text
		rom = append(rom, ins)
	}
	m.rom = rom
	m.A, m.D, m.PC = 0, 0, 0
	return nil
}

func loadErr(line int, text string, err error) error {
	return fmt.Errorf("syntax err at line %d near '%s': %v", line, text, err)
}

func parseLabelDeclare(text string) (string, error) {
	end := strings.IndexByte(text, ')')
	if end == -1 || end != len(text)-1 {
		return "", errors.New("wrong label format")
	}
	label := text[1:end]
	if !validSymbol(label) {
		return "", errors.New("wrong label format")
	}
	return label, nil
}

func validSymbol(symbol string) bool {
	if len(symbol) == 0 || !util.IsSymbolStart(symbol[0]) {
		return false
	}
	for i := 1; i < len(symbol); i++ {
		if !util.IsSymbolByte(symbol[i]) {
			return false
		}
	}
	return true
}

func decodeAInstruction(text string, labels, variables map[string]int16, nextVariable *int16) (instruction, error) {
	operand := text[1:]
	if len(operand) == 0 {
		return instruction{}, errors.New("empty @ operand")
	}
	if util.IsNumber(operand[0]) {
		value, err := strconv.Atoi(operand)
		if err != nil || value >= ramSize {
			return instruction{}, errors.New("wrong decimal value format")
		}
		return instruction{isA: true, value: int16(value)}, nil
	}
	if !validSymbol(operand) {
		return instruction{}, errors.New("wrong variable or label format")
	}
	if addr, exist := predefinedSymbols[operand]; exist {
		return instruction{isA: true, value: addr}, nil
	}
	if addr, exist := labels[operand]; exist {
		return instruction{isA: true, value: addr}, nil
	}
	addr, exist := variables[operand]
	if !exist {
		addr = *nextVariable
		variables[operand] = addr
		*nextVariable++
	}
	return instruction{isA: true, value: addr}, nil
}

// decodeCInstruction splits dest=comp;jump, both dest and jump optional.
func decodeCInstruction(text string) (instruction, error) {
	var ins instruction
	rest := text
	if eq := strings.IndexByte(rest, '='); eq != -1 {
		for i := 0; i < eq; i++ {
			switch rest[i] {
			case 'A':
				ins.dest.a = true
			case 'D':
				ins.dest.d = true
			case 'M':
				ins.dest.m = true
			default:
				return instruction{}, errors.New("wrong dest format")
			}
		}
		if eq == 0 {
			return instruction{}, errors.New("wrong dest format")
		}
		rest = rest[eq+1:]
	}
	if semi := strings.IndexByte(rest, ';'); semi != -1 {
		jump, exist := jumpFuncs[rest[semi+1:]]
		if !exist {
			return instruction{}, errors.New("wrong jump format")
		}
		ins.jump = jump
		rest = rest[:semi]
	}
	comp, exist := compFuncs[rest]
	if !exist {
		return instruction{}, errors.New("wrong comp format")
	}
	ins.comp = comp
	return ins, nil
}

// Step executes one instruction. When a C instruction writes both M and A,
// M goes to the address A held before the instruction.
func (m *Machine) Step() {
	ins := m.rom[m.PC]
	if ins.isA {
		m.A = ins.value
		m.PC++
		return
	}
	addr := m.A
	value := ins.comp(m)
	if ins.dest.m {
		m.RAM[int(addr)&(ramSize-1)] = value
	}
	if ins.dest.a {
		m.A = value
	}
	if ins.dest.d {
		m.D = value
	}
	if ins.jump != nil && ins.jump(value) {
		m.PC = int(m.A)
	} else {
		m.PC++
	}
}

// Run executes until the program falls off the rom or parks on an infinite
// loop, the conventional halt. Both halt shapes are recognized: a jump to the
// instruction itself, and the @L / 0;JMP pair where L addresses its own @
// instruction. It errors if maxSteps is exhausted first, which keeps runaway
// programs from hanging a test.
func (m *Machine) Run(maxSteps int) error {
	for steps := 0; m.PC >= 0 && m.PC < len(m.rom); steps++ {
		if steps >= maxSteps {
			return fmt.Errorf("program did not halt after %d steps, near '%s'", maxSteps, m.rom[m.PC].text)
		}
		prev := m.PC
		m.Step()
		if m.PC == prev {
			return nil
		}
		if m.PC == prev-1 {
			ins := m.rom[m.PC]
			// The @ instruction cannot change the jump decision, so
			// landing back on it means the program is parked.
			if ins.isA && int(ins.value) == m.PC {
				return nil
			}
		}
	}
	return nil
}

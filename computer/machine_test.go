package computer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func loadAndRun(t *testing.T, lines []string) *Machine {
	machine := NewMachine()
	assert.Nil(t, machine.LoadAssembly(lines))
	assert.Nil(t, machine.Run(10000))
	return machine
}

func TestMachine_AInstructionAndDest(t *testing.T) {
	machine := loadAndRun(t, []string{
		"@21",
		"D=A",
		"@13",
		"M=D",
	})
	assert.Equal(t, int16(21), machine.D)
	assert.Equal(t, int16(21), machine.RAM[13])
}

func TestMachine_PredefinedSymbols(t *testing.T) {
	machine := loadAndRun(t, []string{
		"@9",
		"D=A",
		"@R14",
		"M=D",
		"@SP",
		"M=D",
	})
	assert.Equal(t, int16(9), machine.RAM[14])
	assert.Equal(t, int16(9), machine.RAM[0])
}

func TestMachine_VariableAllocation(t *testing.T) {
	machine := loadAndRun(t, []string{
		"@5",
		"D=A",
		"@first",
		"M=D",
		"@second",
		"M=D",
		"@first",
		"M=M+1",
	})
	// Variables go to RAM[16] onwards in order of first use.
	assert.Equal(t, int16(6), machine.RAM[16])
	assert.Equal(t, int16(5), machine.RAM[17])
}

func TestMachine_ForwardLabelReference(t *testing.T) {
	machine := loadAndRun(t, []string{
		"@skipped",
		"0;JMP",
		"@1",
		"D=A", // never reached
		"(skipped)",
		"@7",
		"D=A",
		"@15",
		"M=D",
	})
	assert.Equal(t, int16(7), machine.RAM[15])
}

func TestMachine_CountdownLoop(t *testing.T) {
	machine := loadAndRun(t, []string{
		"@5",
		"D=A",
		"(loop)",
		"D=D-1",
		"@loop",
		"D;JGT",
		"@15",
		"M=D",
	})
	assert.Equal(t, int16(0), machine.RAM[15])
}

func TestMachine_CombinedDestWritesOldAddress(t *testing.T) {
	machine := loadAndRun(t, []string{
		"@10",
		"D=A",
		"@0",
		"M=D", // RAM[0] = 10
		"@0",
		"AM=M-1", // A = 9 and RAM[0] = 9
		"D=M",    // D = RAM[9]
	})
	assert.Equal(t, int16(9), machine.RAM[0])
	assert.Equal(t, int16(9), machine.A)
	assert.Equal(t, int16(0), machine.D)
}

func TestMachine_SixteenBitSemantics(t *testing.T) {
	machine := loadAndRun(t, []string{
		"@0",
		"D=A",
		"D=D-1", // -1, all bits set
		"@13",
		"M=D",
		"D=!D", // 0
		"@14",
		"M=D",
	})
	assert.Equal(t, int16(-1), machine.RAM[13])
	assert.Equal(t, int16(0), machine.RAM[14])
}

func TestMachine_HaltOnParkedLoop(t *testing.T) {
	machine := NewMachine()
	assert.Nil(t, machine.LoadAssembly([]string{
		"(halt)",
		"@halt",
		"0;JMP",
	}))
	assert.Nil(t, machine.Run(10000))
}

func TestMachine_RunOutOfSteps(t *testing.T) {
	machine := NewMachine()
	// A two-location ping-pong loop that never parks.
	assert.Nil(t, machine.LoadAssembly([]string{
		"(a)",
		"@b",
		"0;JMP",
		"(b)",
		"@a",
		"0;JMP",
	}))
	err := machine.Run(100)
	assert.NotNil(t, err)
}

func TestMachine_StackTop(t *testing.T) {
	machine := loadAndRun(t, []string{
		"@42",
		"D=A",
		"@300",
		"M=D", // RAM[300] = 42
		"@301",
		"D=A",
		"@SP",
		"M=D", // SP = 301
	})
	assert.Equal(t, int16(42), machine.StackTop())
}

func TestMachine_LoadErrors(t *testing.T) {
	bad := [][]string{
		{"M=X"},
		{"=D"},
		{"D;JXX"},
		{"X=D"},
		{"@"},
		{"@3x"},
		{"@bad name)"},
		{"(dup)", "@0", "(dup)"},
		{"(unclosed"},
	}
	for _, lines := range bad {
		machine := NewMachine()
		err := machine.LoadAssembly(lines)
		assert.NotNil(t, err, lines[0])
		assert.Contains(t, err.Error(), "line", lines[0])
	}
}

func TestMachine_CommentsAndBlanks(t *testing.T) {
	machine := loadAndRun(t, []string{
		"// leading comment",
		"",
		"@3",
		"D=A // inline comment",
		"@13",
		"M=D",
	})
	assert.Equal(t, int16(3), machine.RAM[13])
}

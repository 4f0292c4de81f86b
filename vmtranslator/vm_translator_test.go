package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVMTranslator_TranslateReader(t *testing.T) {
	source := `function Main.main 0
push constant 1
push constant 2
add
label done
goto done
`
	translator := NewVMTranslator()
	err := translator.translateReader(strings.NewReader(source), "Main")
	assert.Nil(t, err)
	out := translator.output()
	assert.Contains(t, out, "(Main.main)")
	assert.Contains(t, out, "(Main.main$done)")
}

func TestVMTranslator_ReportsFailingLine(t *testing.T) {
	source := "push constant 1\npush constant 2\npush oops 3\n"
	translator := NewVMTranslator()
	err := translator.translateReader(strings.NewReader(source), "Main")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "oops")
	// Nothing of the failed stream survives.
	assert.Len(t, translator.lines, 0)
}

func TestVMTranslator_ReportsUnresolvedContextLine(t *testing.T) {
	source := "push constant 1\nreturn\n"
	translator := NewVMTranslator()
	err := translator.translateReader(strings.NewReader(source), "Main")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "return")
}

func TestVMTranslator_WriteInitializeCode(t *testing.T) {
	translator := NewVMTranslator()
	translator.writeInitializeCode()
	out := translator.output()
	assert.Contains(t, out, "@256")
	assert.Contains(t, out, "@Sys.init")
	assert.Contains(t, out, "($Sys.init_return_0)")
	assert.Contains(t, out, "($InfiniteLoop)")
}

func TestVMTranslator_MultipleFilesShareOneRun(t *testing.T) {
	translator := NewVMTranslator()
	err := translator.translateReader(strings.NewReader("push static 0\neq\n"), "First")
	assert.Nil(t, err)
	err = translator.translateReader(strings.NewReader("push static 0\neq\n"), "Second")
	assert.Nil(t, err)
	out := translator.output()
	assert.Contains(t, out, "@First.0")
	assert.Contains(t, out, "@Second.0")
	// The eq in the second file keeps the label counter moving.
	assert.Contains(t, out, "($eq_true_0)")
	assert.Contains(t, out, "($eq_true_1)")
}

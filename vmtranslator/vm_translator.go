package main

import (
	"io"
	"io/ioutil"
	"os"
	"strings"
)

// VMTranslator glues the parser and the code generator over a directory of
// .vm files. One translator is one translation run: the generator context is
// shared across all files so labels stay unique, and nothing is written to
// disk unless the whole run succeeds.
type VMTranslator struct {
	gen   *CodeGenerator
	lines []string
}

func NewVMTranslator() *VMTranslator {
	return &VMTranslator{gen: NewCodeGenerator()}
}

// translateProgram translates every top-level .vm file under path into one
// assembly stream, optionally preceded by the bootstrap sequence.
func (translator *VMTranslator) translateProgram(path string, writeInitializeCode bool) error {
	if writeInitializeCode {
		translator.writeInitializeCode()
	}
	files, err := ioutil.ReadDir(path)
	if err != nil {
		return err
	}
	for _, f := range files {
		// Ignore sub path
		if f.IsDir() {
			continue
		}
		fName := f.Name()
		// Ignore not vm file
		if !strings.HasSuffix(fName, ".vm") {
			continue
		}
		if err := translator.translateFile(path, fName); err != nil {
			return err
		}
	}
	return nil
}

func (translator *VMTranslator) translateFile(path, filename string) error {
	rd, err := os.Open(path + "/" + filename)
	if err != nil {
		return err
	}
	defer rd.Close()
	return translator.translateReader(rd, strings.TrimSuffix(filename, ".vm"))
}

// translateReader runs one source stream through the pipeline. sourceName is
// the base name scoping the stream's static variables.
func (translator *VMTranslator) translateReader(rd io.Reader, sourceName string) error {
	commands, err := parseAll(rd)
	if err != nil {
		return err
	}
	out, err := translator.gen.Translate(commands, sourceName)
	if err != nil {
		return err
	}
	translator.lines = append(translator.lines, out...)
	return nil
}

// writeInitializeCode bootstraps the program: SP=256, call Sys.init, and an
// infinite loop to park on if Sys.init ever returns. Whether to emit it is a
// whole-program decision, so it lives here rather than in the generator's
// per-command rules.
func (translator *VMTranslator) writeInitializeCode() {
	translator.gen.out = nil
	translator.gen.emit("// bootstrap", "@256", "D=A", "@SP", "M=D")
	translator.gen.writeCall("Sys.init", 0)
	translator.gen.emit("($InfiniteLoop)", "@$InfiniteLoop", "0;JMP")
	translator.lines = append(translator.lines, translator.gen.out...)
}

func (translator *VMTranslator) output() string {
	return strings.Join(translator.lines, "\n") + "\n"
}

func (translator *VMTranslator) saveTo(filepath string) error {
	return ioutil.WriteFile(filepath, []byte(translator.output()), 0666)
}

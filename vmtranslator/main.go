package main

import (
	"flag"
	"fmt"
)

// A simple program to translate hack vm codes to hack assembler.

var (
	path    = flag.String("path", ".", "the program path")
	output  = flag.String("o", "./output.asm", "the saved path")
	verbose = flag.Bool("v", false, "whether print translate result")
	// Sys.init bootstrap; switch off for single-file chapter 7 style programs.
	writeInitializeCode = flag.Bool("wi", true, "whether write initialize code")
)

func main() {
	flag.Parse()
	translator := NewVMTranslator()
	err := translator.translateProgram(*path, *writeInitializeCode)
	if err != nil {
		fmt.Printf("[Translator]: failed to translate program: %s, err: %v\n", *path, err)
		return
	}
	if *verbose {
		fmt.Println(translator.output())
	}
	err = translator.saveTo(*output)
	if err != nil {
		fmt.Printf("[Translator]: failed to save to path: %s, err: %v\n", *output, err)
	}
}

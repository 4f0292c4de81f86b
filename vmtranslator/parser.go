package main

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// The parser is a stateless line classifier. It knows nothing about the
// target machine; it only turns one source line into a Command value, or
// rejects it. All cross-line bookkeeping lives in the code generator.

var identifierFormat = regexp.MustCompile("^[abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_.$:][0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_.$:]*$")

// parseLine classifies one source line. A line holding only whitespace or a
// comment yields a Command with Tp == EmptyCommandTP and no error.
func parseLine(line string, lineNo int) (Command, error) {
	if idx := strings.Index(line, "//"); idx != -1 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{Tp: EmptyCommandTP, Line: lineNo}, nil
	}
	command := Command{Line: lineNo, Content: line}
	tp, exist := commandsMap[strings.ToLower(tokens[0])]
	if !exist {
		return command, &ParseError{Kind: UnknownCommandErr, Line: lineNo, Near: tokens[0]}
	}
	command.Tp = tp
	var err error
	switch tp {
	case ArithmeticCommandTP:
		command.Op = strings.ToLower(tokens[0])
		err = expectTokens(tokens, 1, lineNo)
	case PushCommandTP, PopCommandTP:
		err = parseMemoryAccess(&command, tokens)
	case LabelCommandTP, GotoCommandTP, IfGotoCommandTP:
		err = parseBranch(&command, tokens)
	case FunctionCommandTP, CallCommandTP:
		err = parseFunction(&command, tokens)
	case ReturnCommandTP:
		err = expectTokens(tokens, 1, lineNo)
	}
	if err != nil {
		return command, err
	}
	return command, nil
}

// expectTokens rejects trailing tokens after a complete command.
func expectTokens(tokens []string, want int, lineNo int) error {
	if len(tokens) > want {
		return &ParseError{Kind: UnexpectedTokenErr, Line: lineNo, Near: tokens[want]}
	}
	return nil
}

func parseMemoryAccess(command *Command, tokens []string) error {
	if len(tokens) < 3 {
		return &ParseError{Kind: MalformedMemoryAccessErr, Line: command.Line, Near: command.Content}
	}
	segment, exist := segmentsMap[strings.ToLower(tokens[1])]
	if !exist {
		return &ParseError{Kind: MalformedMemoryAccessErr, Line: command.Line, Near: tokens[1]}
	}
	index, err := parseNonNegative(tokens[2])
	if err != nil {
		return &ParseError{Kind: MalformedMemoryAccessErr, Line: command.Line, Near: tokens[2]}
	}
	if max, bounded := segmentRanges[segment]; bounded && index > max {
		return &ParseError{Kind: SegmentRangeErr, Line: command.Line, Near: tokens[2]}
	}
	command.Segment = segment
	command.Index = index
	return expectTokens(tokens, 3, command.Line)
}

func parseBranch(command *Command, tokens []string) error {
	if len(tokens) < 2 || !identifierFormat.MatchString(tokens[1]) {
		return &ParseError{Kind: MalformedIdentifierErr, Line: command.Line, Near: command.Content}
	}
	command.Symbol = tokens[1]
	return expectTokens(tokens, 2, command.Line)
}

func parseFunction(command *Command, tokens []string) error {
	if len(tokens) < 2 || !identifierFormat.MatchString(tokens[1]) {
		return &ParseError{Kind: MalformedIdentifierErr, Line: command.Line, Near: command.Content}
	}
	if len(tokens) < 3 {
		return &ParseError{Kind: MalformedArgCountErr, Line: command.Line, Near: command.Content}
	}
	count, err := parseNonNegative(tokens[2])
	if err != nil {
		return &ParseError{Kind: MalformedArgCountErr, Line: command.Line, Near: tokens[2]}
	}
	command.Symbol = tokens[1]
	command.Count = count
	return expectTokens(tokens, 3, command.Line)
}

func parseNonNegative(token string) (int, error) {
	value, err := strconv.Atoi(token)
	if err != nil {
		return -1, err
	}
	if value < 0 {
		return -1, strconv.ErrRange
	}
	return value, nil
}

// parseAll reads a whole source stream and returns its commands in source
// order, empty lines already dropped. It stops at the first malformed line.
func parseAll(rd io.Reader) ([]Command, error) {
	var commands []Command
	scanner := bufio.NewScanner(rd)
	lineNo := 1
	for scanner.Scan() {
		command, err := parseLine(scanner.Text(), lineNo)
		if err != nil {
			return nil, err
		}
		if command.Tp != EmptyCommandTP {
			commands = append(commands, command)
		}
		lineNo++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return commands, nil
}

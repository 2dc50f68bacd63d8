package assemble

import (
	"fmt"
	"strconv"
	"strings"

	"sinc/internal/isa"
)

// operand is the parsed form of an instruction's operand text.
type operand struct {
	mode   isa.AddressingMode
	value  uint16 // literal or placeholder (0) when symbol != ""
	symbol string // non-empty when the operand references a label/constant
}

// parseOperand recognizes the syntaxes codegen emits:
//
//	#123, #label       immediate
//	a, b                register A/B
//	$1234               absolute
//	$1234,x  $1234,y    x/y-indexed
//	(1234)              indirect
//	(1234),x (1234),y   indirect-indexed
//	(1234,x) (1234,y)   indexed-indirect
//	label               bare absolute reference (relocatable)
func parseOperand(text string) (operand, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return operand{}, fmt.Errorf("empty operand")
	}

	lower := strings.ToLower(text)
	if lower == "a" {
		return operand{mode: isa.RegA}, nil
	}
	if lower == "b" {
		return operand{mode: isa.RegB}, nil
	}

	if strings.HasPrefix(text, "#") {
		return parseValueOrSymbol(text[1:], isa.Immediate)
	}

	if strings.HasPrefix(text, "(") {
		return parseIndirect(text)
	}

	if idx := strings.LastIndex(lower, ","); idx >= 0 {
		base := text[:idx]
		suffix := strings.TrimSpace(lower[idx+1:])
		mode := isa.Absolute
		switch suffix {
		case "x":
			mode = isa.XIndex
		case "y":
			mode = isa.YIndex
		default:
			return operand{}, fmt.Errorf("unrecognized index register %q", suffix)
		}
		return parseValueOrSymbol(base, mode)
	}

	return parseValueOrSymbol(text, isa.Absolute)
}

func parseIndirect(text string) (operand, error) {
	closeIdx := strings.Index(text, ")")
	if closeIdx < 0 {
		return operand{}, fmt.Errorf("unterminated indirect operand %q", text)
	}
	inner := text[1:closeIdx]
	after := strings.TrimSpace(text[closeIdx+1:])

	if strings.HasSuffix(inner, ",x") || strings.HasSuffix(inner, ",X") {
		base := strings.TrimSpace(inner[:len(inner)-2])
		return parseValueOrSymbol(base, isa.IndexedIndirectX)
	}
	if strings.HasSuffix(inner, ",y") || strings.HasSuffix(inner, ",Y") {
		base := strings.TrimSpace(inner[:len(inner)-2])
		return parseValueOrSymbol(base, isa.IndexedIndirectY)
	}

	switch strings.TrimPrefix(after, ",") {
	case "x", "X":
		return parseValueOrSymbol(inner, isa.IndirectIndexedX)
	case "y", "Y":
		return parseValueOrSymbol(inner, isa.IndirectIndexedY)
	case "":
		return parseValueOrSymbol(inner, isa.Indirect)
	default:
		return operand{}, fmt.Errorf("unrecognized indirect operand %q", text)
	}
}

func parseValueOrSymbol(text string, mode isa.AddressingMode) (operand, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "$") {
		v, err := strconv.ParseUint(text[1:], 16, 16)
		if err != nil {
			return operand{}, fmt.Errorf("bad hex literal %q: %w", text, err)
		}
		return operand{mode: mode, value: uint16(v)}, nil
	}
	if v, err := strconv.ParseInt(text, 10, 32); err == nil {
		return operand{mode: mode, value: uint16(v)}, nil
	}
	// Anything else is a symbol reference, resolved by the assembler's
	// symbol table (possibly deferred to link time).
	return operand{mode: mode, symbol: text}, nil
}

package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sinc/internal/isa"
	"sinc/internal/vm"
)

// Stepper is the subset of *vm.VM the monitor drives, kept narrow so
// tests can supply a fake machine instead of a fully loaded image.
type Stepper interface {
	Step() error
	Halted() bool
	ExitCode() uint16
}

// Monitor is an interactive step-debugger for a running program,
// grounded on beevik-go6502/debugger's register-and-memory dump layout
// (its "registers" and "disassemble" commands), reimplemented as a
// bubbletea view since the rest of the toolchain already commits to
// that TUI stack for internal/ui.
type Monitor struct {
	machine  Stepper
	dump     func() []registerLine
	memory   func(addr uint16, n int) []byte
	memAddr  uint16
	err      error
	quitting bool
}

type registerLine struct {
	name  string
	value uint16
}

// NewMonitor builds a Monitor over m, reading register and memory
// state through the same VM instance m steps.
func NewMonitor(m *vm.VM, memAddr uint16) *Monitor {
	return &Monitor{
		machine: m,
		dump: func() []registerLine {
			return []registerLine{
				{"A", m.A}, {"B", m.B}, {"X", m.X}, {"Y", m.Y},
				{"SP", m.SP}, {"CALL_SP", m.CallSP}, {"PC", m.PC},
				{"STATUS", uint16(m.Status)},
			}
		},
		memory: func(addr uint16, n int) []byte {
			end := int(addr) + n
			if end > len(m.Mem) {
				end = len(m.Mem)
			}
			return m.Mem[addr:end]
		},
		memAddr: memAddr,
	}
}

func (m *Monitor) Init() tea.Cmd { return nil }

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ", "n", "enter":
		if !m.machine.Halted() && m.err == nil {
			if err := m.machine.Step(); err != nil {
				m.err = err
			}
		}
	case "r":
		for !m.machine.Halted() && m.err == nil {
			if err := m.machine.Step(); err != nil {
				m.err = err
				break
			}
		}
	}
	if m.machine.Halted() {
		return m, nil
	}
	return m, nil
}

func (m *Monitor) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	faultStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	haltStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("sinc monitor"))
	b.WriteString("\n\n")

	for _, reg := range m.dump() {
		if reg.name == "STATUS" {
			b.WriteString(fmt.Sprintf("  %-8s %s\n", reg.name, flagString(isa.StatusFlag(reg.value))))
			continue
		}
		b.WriteString(fmt.Sprintf("  %-8s $%04X\n", reg.name, reg.value))
	}

	b.WriteString("\n")
	b.WriteString(hexDump(m.memory(m.memAddr, 64), m.memAddr))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(faultStyle.Render(fmt.Sprintf("fault: %v\n", m.err)))
	case m.machine.Halted():
		b.WriteString(haltStyle.Render(fmt.Sprintf("halted, exit code %d\n", m.machine.ExitCode())))
	default:
		b.WriteString("space/n: step   r: run to halt   q: quit\n")
	}

	return b.String()
}

func flagString(status isa.StatusFlag) string {
	flags := []struct {
		bit isa.StatusFlag
		ch  byte
	}{
		{isa.FlagNegative, 'N'}, {isa.FlagOverflow, 'V'}, {isa.FlagUndefined, 'U'},
		{isa.FlagHalt, 'H'}, {isa.FlagInterrupt, 'I'}, {isa.FlagFloat, 'F'},
		{isa.FlagZero, 'Z'}, {isa.FlagCarry, 'C'},
	}
	var b strings.Builder
	for _, f := range flags {
		if status&f.bit != 0 {
			b.WriteByte(f.ch)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func hexDump(mem []byte, base uint16) string {
	var b strings.Builder
	for row := 0; row < len(mem); row += 16 {
		end := row + 16
		if end > len(mem) {
			end = len(mem)
		}
		b.WriteString(fmt.Sprintf("  $%04X  ", int(base)+row))
		for i := row; i < end; i++ {
			b.WriteString(fmt.Sprintf("%02X ", mem[i]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

package models

import (
	"fmt"
	"strings"
)

// Mode selects the label scheme used when a table is turned into a tree.
type Mode int

const (
	// ModeStructure labels every node with its tag name only.
	ModeStructure Mode = iota
	ModeFull           // tag name plus trimmed cell text on td nodes
)

// AllModes lists the modes every table pair is scored under.
var AllModes = []Mode{ModeStructure, ModeFull}

func (m Mode) String() string {
	switch m {
	case ModeStructure:
		return "structure"
	case ModeFull:
		return "full"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// StructureOnly reports whether cell text is left out of labels.
func (m Mode) StructureOnly() bool {
	return m == ModeStructure
}

// ParseMode resolves a mode name as given on the command line.
func ParseMode(s string) (Mode, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "structure", "teds", "struct":
		return ModeStructure, nil
	case "full", "ted", "content":
		return ModeFull, nil
	}
	return ModeStructure, fmt.Errorf("unknown mode %q (want structure or full)", s)
}

package ui

import "github.com/drake/winsize/size"

// SizeMsg carries a published size into the Bubble Tea program.
type SizeMsg size.Dimensions

// PrintMsg carries a line of output into the Bubble Tea program.
type PrintMsg string

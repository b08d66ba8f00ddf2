package encode

import (
	"fmt"

	"github.com/fatih/color"
)

// Colors maps the parts of a rendered report to sprintf-style colorizers.
type Colors struct {
	Added   func(string, ...any) string
	Removed func(string, ...any) string
	Changed func(string, ...any) string
	Path    func(string, ...any) string
	Key     func(string, ...any) string
}

func NewColors() *Colors {
	return &Colors{
		Added:   color.GreenString,
		Removed: color.RedString,
		Changed: color.YellowString,
		Path:    color.CyanString,
		Key:     color.RGB(196, 96, 16).SprintfFunc(),
	}
}

func noColors() *Colors {
	return &Colors{
		Added:   fmt.Sprintf,
		Removed: fmt.Sprintf,
		Changed: fmt.Sprintf,
		Path:    fmt.Sprintf,
		Key:     fmt.Sprintf,
	}
}

package bot

import (
	"strings"

	"github.com/UnknownOlympus/hestia/internal/i18n"
)

// MenuButton represents a single button of the reply keyboard.
type MenuButton struct {
	TextKey string // i18n key for button text
	Command string // Command run when the button is pressed
}

// mainMenu is the reply keyboard, one slice per row.
var mainMenu = [][]MenuButton{
	{{TextKey: "menu.list", Command: "/list"}, {TextKey: "menu.new", Command: "/new"}},
	{{TextKey: "menu.undo", Command: "/undo"}, {TextKey: "menu.stats", Command: "/stats"}},
	{{TextKey: "menu.export", Command: "/export"}, {TextKey: "menu.help", Command: "/help"}},
}

// menuCommand returns the command of a keyboard button label. Labels of every
// language are accepted, since the keyboard of a chat may predate a language change.
func menuCommand(loc *i18n.Localizer, text string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, row := range mainMenu {
		for _, button := range row {
			for _, lang := range i18n.Languages {
				if loc.Get(lang, button.TextKey) == text {
					return button.Command, true
				}
			}
		}
	}
	return "", false
}

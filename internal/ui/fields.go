package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/five82/formstate/internal/config"
)

// fieldView pairs a field definition with its editor. Bool fields have no
// text input and render as a checkbox.
type fieldView struct {
	def   config.Field
	input textinput.Model
	// invalid holds a local parse error for number inputs; it is never sent
	// to the form.
	invalid string
}

func newFieldViews(def config.Definition) []fieldView {
	views := make([]fieldView, 0, len(def.Fields))
	for _, f := range def.Fields {
		v := fieldView{def: f}
		if f.Kind != config.KindBool {
			in := textinput.New()
			in.Prompt = ""
			in.Placeholder = f.Placeholder
			in.CharLimit = 256
			in.Width = 40
			if f.Kind == config.KindPassword {
				in.EchoMode = textinput.EchoPassword
				in.EchoCharacter = '•'
			}
			v.input = in
		}
		views = append(views, v)
	}
	return views
}

func (v fieldView) isBool() bool {
	return v.def.Kind == config.KindBool
}

// formatValue renders a field value as input text.
func formatValue(kind config.Kind, value any) string {
	switch kind {
	case config.KindNumber:
		n, ok := value.(float64)
		if !ok {
			return ""
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case config.KindBool:
		if b, _ := value.(bool); b {
			return "true"
		}
		return "false"
	default:
		s, _ := value.(string)
		return s
	}
}

// parseInput converts input text to the field's value type.
func parseInput(kind config.Kind, text string) (any, error) {
	if kind == config.KindNumber {
		return config.Coerce(kind, strings.TrimSpace(text))
	}
	return config.Coerce(kind, text)
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

package doc

import (
	"fmt"
	"strings"

	"github.com/rubiojr/redislua/compiler"
	"github.com/rubiojr/redislua/script"
)

// FormatFile formats a FileDoc for terminal display.
func FormatFile(fd *FileDoc) string {
	if len(fd.Scripts) == 0 {
		return fmt.Sprintf("%s: no embedded scripts\n", fd.Path)
	}

	var sb strings.Builder
	for _, s := range fd.Scripts {
		formatScript(&sb, s)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func formatScript(sb *strings.Builder, s ScriptDoc) {
	sb.WriteString(FormatSymbol(s.Doc, Signature(s)))
	for _, p := range s.Placeholders {
		sigil := "@"
		if p.Kind == script.Var {
			sigil = "$"
		}
		fmt.Fprintf(sb, "    %-12s %-8s %s\n", sigil+p.Name, p.Type, p.ARGV)
	}
}

// FormatSymbol formats a single symbol lookup result.
func FormatSymbol(docStr, signature string) string {
	var sb strings.Builder
	sb.WriteString(signature)
	sb.WriteString("\n")
	if docStr != "" {
		sb.WriteString("    ")
		sb.WriteString(strings.ReplaceAll(docStr, "\n", "\n    "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Signature renders the Go expression that builds a fully bound script, or
// the constant declaration of a plain string script.
func Signature(s ScriptDoc) string {
	if s.Kind == compiler.StringSite {
		return fmt.Sprintf("const %s string", s.Name)
	}

	var params []string
	for _, p := range s.Caps() {
		params = append(params, p.Name+" "+p.Type)
	}
	sig := fmt.Sprintf("%s(%s)", compiler.ConstructorName(s.Name), strings.Join(params, ", "))
	for _, p := range s.Vars() {
		sig += fmt.Sprintf(".%s(%s)", compiler.SetterName(p.Name), p.Type)
	}
	return sig
}

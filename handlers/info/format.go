// Package info implements the /info command group and the info context menus.
package info

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const keyWidth = 12

// Field is one row of an info reply. Rows keep the order they are added in.
type Field struct {
	Key   string
	Value any
}

var titleCaser = cases.Title(language.English)

func formatKey(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case string:
		if val == "" {
			return "None"
		}
		return val
	case time.Time:
		if val.IsZero() {
			return "None"
		}
		return val.UTC().Format("2006-01-02 15:04:05 MST")
	case *time.Time:
		if val == nil {
			return "None"
		}
		return formatScalar(*val)
	default:
		return fmt.Sprint(val)
	}
}

// FormatInfo renders fields as a titled, aligned code block.
func FormatInfo(infoType string, fields []Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Info\n```", formatKey(infoType))
	for _, f := range fields {
		key := formatKey(f.Key)
		items, isList := f.Value.([]string)
		if !isList {
			fmt.Fprintf(&b, "\n%-*s %s", keyWidth, key, formatScalar(f.Value))
			continue
		}
		b.WriteString("\n" + key)
		pad := strings.Repeat(" ", max(keyWidth-len(key), 0))
		for _, item := range items {
			b.WriteString(pad + " " + item)
			pad = "\n" + strings.Repeat(" ", keyWidth)
		}
	}
	b.WriteString("\n```")
	return b.String()
}

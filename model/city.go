package model

import (
	"strings"
	"unicode"
)

// City 是攻城目标
type City struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Level    int     `json:"level"`
	DeepLink string  `json:"deep_link,omitempty"`
	Coords   *[2]int `json:"coords,omitempty"`
	Region   string  `json:"region,omitempty"`
}

// Slugify lowercases name and strips every whitespace rune.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Package translator wraps the language detector and the translation
// service the translation handlers depend on.
package translator

import "context"

// Translator turns text from src into dest. An empty src asks the service
// to detect the source language.
type Translator interface {
	Translate(ctx context.Context, text, src, dest string) (string, error)
}

// Detector returns the ISO 639-1 code of the language text is written in.
type Detector interface {
	Detect(text string) (string, error)
}

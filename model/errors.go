package model

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrPermission  = errors.New("insufficient permission")
	ErrNotFound    = errors.New("not found")
	ErrParse       = errors.New("parse error")
	ErrTranslation = errors.New("translation failed")
	ErrDetection   = errors.New("language detection failed")
	ErrConfig      = errors.New("missing configuration")
)

// ClassifyDiscordError wraps a discordgo REST error with ErrPermission or
// ErrNotFound according to its HTTP status. Other errors pass through.
func ClassifyDiscordError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return err
	}
	switch restErr.Response.StatusCode {
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrPermission, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

package translator

import (
	"context"
	"elk-bot/model"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultEndpoint is the public endpoint used by the Google Translate web widget.
const DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

// Google calls the translate_a/single endpoint and joins the translated
// sentence segments of its nested-array response.
type Google struct {
	Client   *http.Client
	Endpoint string
}

func NewGoogle(client *http.Client, endpoint string) *Google {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Google{Client: client, Endpoint: endpoint}
}

func (g *Google) Translate(ctx context.Context, text, src, dest string) (string, error) {
	if src == "" {
		src = "auto"
	}
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", src)
	params.Set("tl", dest)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrTranslation, err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrTranslation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", model.ErrTranslation, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %s", model.ErrTranslation, resp.Status)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: malformed response", model.ErrTranslation)
	}

	var b strings.Builder
	for _, segment := range gjson.GetBytes(body, "0.#.0").Array() {
		b.WriteString(segment.String())
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: empty translation for %s -> %s", model.ErrTranslation, src, dest)
	}
	return b.String(), nil
}

package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxDownloadSize caps attachment downloads at Discord's own upload limit.
const maxDownloadSize = 25 << 20

// Download fetches url into memory using the shared HTTP client.
func Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := GlobalHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("file exceeds %d bytes", maxDownloadSize)
	}
	return data, nil
}

package jobs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// DownloadReport fetches a job's diagnostic report and writes it into dir as
// {prefix}_report<timestamp>.log, returning the file path.
func DownloadReport(ctx context.Context, client *http.Client, reportURL, dir, prefix string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reportURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build report request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("report download returned status %d", resp.StatusCode)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_report%d.log", prefix, time.Now().UnixNano()))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	log.Info().Str("path", path).Msg("Report downloaded")
	return path, nil
}

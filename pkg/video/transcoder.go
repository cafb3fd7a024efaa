package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Transcoder converts a raw source video into an HLS rendition.
type Transcoder interface {
	Transcode(ctx context.Context, sourcePath, outputDir string) (manifestPath string, err error)
}

// FFmpegTranscoder shells out to ffmpeg to produce a single-rendition HLS
// stream with a playlist.m3u8 and segment files next to it.
type FFmpegTranscoder struct {
	binary string
}

// NewFFmpegTranscoder builds a transcoder invoking the given ffmpeg binary.
func NewFFmpegTranscoder(binary string) *FFmpegTranscoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegTranscoder{binary: binary}
}

// Transcode runs ffmpeg over the source file. Output lands in outputDir as
// playlist.m3u8 plus numbered .ts segments.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, sourcePath, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("prepare output directory: %w", err)
	}
	manifestPath := filepath.Join(outputDir, "playlist.m3u8")
	args := []string{
		"-y",
		"-i", sourcePath,
		"-codec", "copy",
		"-start_number", "0",
		"-hls_time", "6",
		"-hls_list_size", "0",
		"-hls_segment_filename", filepath.Join(outputDir, "segment_%05d.ts"),
		"-f", "hls",
		manifestPath,
	}
	cmd := exec.CommandContext(ctx, t.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg transcode: %w: %s", err, truncate(out, 512))
	}
	if _, err := os.Stat(manifestPath); err != nil {
		return "", fmt.Errorf("ffmpeg produced no manifest: %w", err)
	}
	return manifestPath, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

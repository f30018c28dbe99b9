package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	SampleRate    = 16000
	Channels      = 1
	SampleFormat  = "s16"
	outputSuffix  = "_pcm16k_mono.wav"
	defaultBinary = "ffmpeg"
)

type Config struct {
	FFmpegPath string `envconfig:"FFMPEG_PATH" split_words:"true" default:"ffmpeg"`
}

// FFmpegNormalizer shells out to ffmpeg to produce mono 16 kHz s16 WAV.
type FFmpegNormalizer struct {
	binary string
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewFFmpegNormalizer(cfg Config) *FFmpegNormalizer {
	binary := strings.TrimSpace(cfg.FFmpegPath)
	if binary == "" {
		binary = defaultBinary
	}
	return &FFmpegNormalizer{
		binary: binary,
		run:    runCommand,
	}
}

func (n *FFmpegNormalizer) Normalize(ctx context.Context, inputPath string) (string, error) {
	inputPath = strings.TrimSpace(inputPath)
	if inputPath == "" {
		return "", errors.New("audio path is empty")
	}

	outPath := OutputPath(inputPath)
	if out, err := n.run(ctx, n.binary, Args(inputPath, outPath)...); err != nil {
		return "", fmt.Errorf("ffmpeg convert %s: %w: %s", inputPath, err, strings.TrimSpace(string(out)))
	}
	return outPath, nil
}

func OutputPath(inputPath string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return base + outputSuffix
}

func Args(inputPath, outPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-ac", fmt.Sprint(Channels),
		"-ar", fmt.Sprint(SampleRate),
		"-sample_fmt", SampleFormat,
		outPath,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stderr.Bytes(), err
	}
	return nil, nil
}

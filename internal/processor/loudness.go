package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

var loudnormJSONPattern = regexp.MustCompile(`(?s)\{.*\}`)

// loudnormMeasurement is the JSON block ffmpeg's loudnorm filter prints to
// stderr during its first, measurement-only pass.
type loudnormMeasurement struct {
	InputI            string `json:"input_i"`
	InputTP           string `json:"input_tp"`
	InputLRA          string `json:"input_lra"`
	InputThresh       string `json:"input_thresh"`
	TargetOffset      string `json:"target_offset"`
	NormalizationType string `json:"normalization_type"`
}

func (p *Processor) measureLoudness(ctx context.Context, path string) (*loudnormMeasurement, error) {
	filter := fmt.Sprintf("loudnorm=I=%g:TP=%g:LRA=%g:print_format=json",
		p.opts.LoudnessTargetLUFS, p.opts.LoudnessTruePeak, p.opts.LoudnessRange)

	output, _ := p.run(ctx, p.ffmpegPath, "-i", path, "-af", filter, "-f", "null", "-")

	block := loudnormJSONPattern.Find(output)
	if block == nil {
		return nil, fmt.Errorf("no loudnorm measurement in ffmpeg output for %s", path)
	}

	var m loudnormMeasurement
	if err := json.Unmarshal(block, &m); err != nil {
		return nil, fmt.Errorf("parse loudnorm measurement: %w", err)
	}

	return &m, nil
}

// NormalizeLoudness performs a two-pass EBU R128 loudness normalization of
// the audio at path to Options.LoudnessTargetLUFS, re-encoding it in place.
func (p *Processor) NormalizeLoudness(ctx context.Context, path string) error {
	if !p.available {
		return nil
	}

	measured, err := p.measureLoudness(ctx, path)
	if err != nil {
		return err
	}

	filter := fmt.Sprintf(
		"loudnorm=I=%g:TP=%g:LRA=%g:measured_I=%s:measured_TP=%s:measured_LRA=%s:measured_thresh=%s:offset=%s:linear=true:print_format=summary",
		p.opts.LoudnessTargetLUFS, p.opts.LoudnessTruePeak, p.opts.LoudnessRange,
		measured.InputI, measured.InputTP, measured.InputLRA, measured.InputThresh, measured.TargetOffset,
	)

	tmpPath := stagedSiblingPath(path, ".normalized")

	args := []string{
		"-y",
		"-i", path,
		"-af", filter,
		tmpPath,
	}

	if _, err := p.run(ctx, p.ffmpegPath, args...); err != nil {
		return fmt.Errorf("normalize loudness: %w", err)
	}

	return replaceInPlace(path, tmpPath)
}

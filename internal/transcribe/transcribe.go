// Package transcribe turns uploaded audio files into text. It never fails
// outward: every outcome is a Result whose status says whether Text is a
// real transcript or a human-readable failure description.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result is the outcome of a transcription attempt. When Status is
// StatusFailed, Text holds guidance for the user instead of a transcript.
type Result struct {
	Status Status
	Text   string
}

func (r Result) Succeeded() bool { return r.Status == StatusSucceeded }

func succeeded(text string) Result { return Result{Status: StatusSucceeded, Text: text} }
func failed(text string) Result    { return Result{Status: StatusFailed, Text: text} }

const msgCouldNotUnderstand = "Could not understand audio - please try a clearer recording"

// Transcriber runs a two-tier recognition attempt: WAV files are decoded and
// recognized directly; anything else is transcoded to WAV with ffmpeg and
// retried once.
type Transcriber struct {
	rec    Recognizer
	ffmpeg string
	log    *slog.Logger
}

func New(rec Recognizer, ffmpegPath string, log *slog.Logger) *Transcriber {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Transcriber{rec: rec, ffmpeg: ffmpegPath, log: log}
}

// Transcribe converts the audio file at path to text.
func (t *Transcriber) Transcribe(ctx context.Context, path string) Result {
	samples, rate, err := decodeWAV(path)
	if err == nil {
		return t.recognize(ctx, samples, rate)
	}

	t.log.Info("direct decode failed, falling back to transcode", "path", path, "error", err)
	return t.fallback(ctx, path)
}

// recognize maps recognizer outcomes onto user-facing results. Ambiguous
// audio and service failures are terminal; they never trigger the transcode
// retry.
func (t *Transcriber) recognize(ctx context.Context, samples []int, rate int) Result {
	text, err := t.rec.Recognize(ctx, samples, rate)
	if err == nil {
		return succeeded(text)
	}
	if errors.Is(err, ErrNoSpeech) {
		return failed(msgCouldNotUnderstand)
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return failed("Transcription service error: " + se.Err.Error())
	}
	return failed("Error transcribing audio: " + err.Error())
}

// fallback transcodes the input to mono 16kHz WAV capped at five minutes,
// then retries recognition once. The temporary file is removed on every
// exit path.
func (t *Transcriber) fallback(ctx context.Context, path string) Result {
	tmp, err := os.CreateTemp("", "auranotes-transcode-*.wav")
	if err != nil {
		return failed("Error transcribing audio: " + err.Error())
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := t.transcode(ctx, path, tmp.Name()); err != nil {
		return failed(classifyTranscodeError(err))
	}

	samples, rate, err := decodeWAV(tmp.Name())
	if err != nil {
		return failed("Error transcribing audio: " + err.Error())
	}
	return t.recognize(ctx, samples, rate)
}

func (t *Transcriber) transcode(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, t.ffmpeg,
		"-y",
		"-i", src,
		"-ac", "1",
		"-ar", "16000",
		"-t", strconv.Itoa(maxSeconds),
		dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %w (%s)", err, firstLine(out))
	}
	return nil
}

// classifyTranscodeError tailors the failure text: a missing ffmpeg binary
// and a timed-out conversion each get specific guidance.
func classifyTranscodeError(err error) string {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return "Audio transcription failed. Please try:\n" +
			"1. Convert your audio to WAV format\n" +
			"2. Install FFmpeg for MP3/M4A support\n" +
			"3. Use shorter audio files (under 5 minutes)\n\n" +
			"Error: " + err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Transcription timeout - audio file may be too long or corrupted"
	default:
		return "Error transcribing audio: " + err.Error()
	}
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}

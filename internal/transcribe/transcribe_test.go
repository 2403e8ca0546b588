package transcribe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	calls int
	text  string
	err   error

	gotSamples []int
	gotRate    int
}

func (f *fakeRecognizer) Recognize(_ context.Context, samples []int, rate int) (string, error) {
	f.calls++
	f.gotSamples = samples
	f.gotRate = rate
	return f.text, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeWAV writes mono 16-bit PCM test audio.
func writeWAV(t *testing.T, path string, samples []int, rate int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	err = enc.Write(&audio.IntBuffer{
		Data:           samples,
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: 16,
	})
	require.NoError(t, err)
	require.NoError(t, enc.Close())
}

// loudSamples fills a second of clearly-above-noise audio.
func loudSamples(rate int) []int {
	samples := make([]int, rate)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 8000
		} else {
			samples[i] = -8000
		}
	}
	return samples
}

func TestTranscribe_DirectWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.wav")
	writeWAV(t, path, loudSamples(16000), 16000)

	rec := &fakeRecognizer{text: "hello world"}
	tr := New(rec, "ffmpeg", testLogger())

	res := tr.Transcribe(context.Background(), path)
	require.Equal(t, StatusSucceeded, res.Status)
	require.Equal(t, "hello world", res.Text)
	require.Equal(t, 1, rec.calls)
	require.Equal(t, 16000, rec.gotRate)
	require.NotEmpty(t, rec.gotSamples)
}

func TestTranscribe_NoSpeechNoRetry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.wav")
	writeWAV(t, path, loudSamples(16000), 16000)

	rec := &fakeRecognizer{err: ErrNoSpeech}
	tr := New(rec, "ffmpeg", testLogger())

	res := tr.Transcribe(context.Background(), path)
	require.Equal(t, StatusFailed, res.Status)
	require.Contains(t, res.Text, "Could not understand audio")
	require.Equal(t, 1, rec.calls, "ambiguous audio must not trigger the transcode retry")
}

func TestTranscribe_ServiceError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.wav")
	writeWAV(t, path, loudSamples(16000), 16000)

	rec := &fakeRecognizer{err: &ServiceError{Err: errors.New("connection refused")}}
	tr := New(rec, "ffmpeg", testLogger())

	res := tr.Transcribe(context.Background(), path)
	require.Equal(t, StatusFailed, res.Status)
	require.Contains(t, res.Text, "Transcription service error")
	require.Contains(t, res.Text, "connection refused")
	require.Equal(t, 1, rec.calls)
}

func TestTranscribe_NonWAVMissingFFmpeg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not audio at all"), 0o644))

	rec := &fakeRecognizer{text: "unused"}
	tr := New(rec, "auranotes-missing-ffmpeg-binary", testLogger())

	res := tr.Transcribe(context.Background(), path)
	require.Equal(t, StatusFailed, res.Status)
	require.Contains(t, res.Text, "Install FFmpeg")
	require.Contains(t, res.Text, "Convert your audio to WAV")
	require.Equal(t, 0, rec.calls)
}

func TestPrepare_TruncatesToFiveMinutes(t *testing.T) {
	rate := 100 // keep the fixture small
	samples := make([]int, rate*maxSeconds+rate)
	for i := range samples {
		samples[i] = 5000
	}

	got, gotRate := prepare(&audio.IntBuffer{
		Data:   samples,
		Format: &audio.Format{NumChannels: 1, SampleRate: rate},
	})
	require.Equal(t, rate, gotRate)
	require.LessOrEqual(t, len(got), rate*maxSeconds)
}

func TestDownmix(t *testing.T) {
	stereo := []int{100, 200, 300, 500}
	mono := downmix(stereo, 2)
	require.Equal(t, []int{150, 400}, mono)
}

func TestCalibrate_TrimsLeadingSilence(t *testing.T) {
	rate := 1000
	samples := make([]int, 2*rate)
	// First second is near-silence, second second is loud.
	for i := rate; i < 2*rate; i++ {
		samples[i] = 10000
	}

	got := calibrate(samples, rate)
	require.Less(t, len(got), len(samples), "leading silence should be trimmed")
	require.Equal(t, 10000, got[len(got)-1])
}

func TestCalibrate_AllSilenceKept(t *testing.T) {
	rate := 1000
	samples := make([]int, 2*rate)

	got := calibrate(samples, rate)
	require.Equal(t, samples, got, "silent audio is handed to the recognizer unchanged")
}

func TestClassifyTranscodeError(t *testing.T) {
	msg := classifyTranscodeError(context.DeadlineExceeded)
	require.Contains(t, msg, "timeout")

	msg = classifyTranscodeError(errors.New("codec exploded"))
	require.Contains(t, msg, "codec exploded")
}

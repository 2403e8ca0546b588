package transcribe

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// maxSeconds bounds the audio fed to recognition; longer input is truncated.
const maxSeconds = 5 * 60

// decodeWAV reads a WAV file into mono samples ready for recognition:
// stereo input is downmixed, the duration is capped at five minutes, and
// leading ambient noise is trimmed based on a calibration window.
func decodeWAV(path string) ([]int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("not a decodable WAV file")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode WAV: %w", err)
	}

	samples, rate := prepare(buf)
	if len(samples) == 0 {
		return nil, 0, fmt.Errorf("empty audio stream")
	}
	return samples, rate, nil
}

func prepare(buf *audio.IntBuffer) ([]int, int) {
	samples := buf.Data
	rate := buf.Format.SampleRate

	if n := buf.Format.NumChannels; n > 1 {
		samples = downmix(samples, n)
	}
	if max := rate * maxSeconds; len(samples) > max {
		samples = samples[:max]
	}
	return calibrate(samples, rate), rate
}

// downmix averages interleaved channels into mono.
func downmix(samples []int, channels int) []int {
	mono := make([]int, 0, len(samples)/channels)
	for i := 0; i+channels <= len(samples); i += channels {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += samples[i+c]
		}
		mono = append(mono, sum/channels)
	}
	return mono
}

// calibrate measures the ambient noise floor over the first half second and
// drops leading frames that stay below it, so recognition starts at speech.
func calibrate(samples []int, rate int) []int {
	window := rate / 2
	if window <= 0 || window >= len(samples) {
		return samples
	}

	noise := meanAbs(samples[:window])
	threshold := noise*3/2 + 300

	frame := rate / 50 // 20ms
	if frame <= 0 {
		return samples
	}
	for start := 0; start+frame <= len(samples); start += frame {
		if meanAbs(samples[start:start+frame]) > threshold {
			return samples[start:]
		}
	}
	// Nothing above the floor; hand everything to the recognizer and let it
	// report the no-speech case.
	return samples
}

func meanAbs(samples []int) int {
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		sum += int64(s)
	}
	return int(sum / int64(len(samples)))
}

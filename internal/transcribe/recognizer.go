package transcribe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNoSpeech is returned when the recognizer received the audio but could
// not detect any speech in it.
var ErrNoSpeech = errors.New("no speech detected")

// ServiceError wraps a network or remote-service failure during recognition.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string { return "speech service error: " + e.Err.Error() }
func (e *ServiceError) Unwrap() error { return e.Err }

// Recognizer converts mono PCM samples to text.
type Recognizer interface {
	Recognize(ctx context.Context, samples []int, sampleRate int) (string, error)
}

// GoogleRecognizer posts linear PCM to the Google Speech v2 endpoint and
// picks the first transcript hypothesis out of the line-delimited JSON reply.
type GoogleRecognizer struct {
	endpoint string
	key      string
	lang     string
	client   *http.Client
}

func NewGoogleRecognizer(endpoint, key, lang string) *GoogleRecognizer {
	if endpoint == "" {
		endpoint = "http://www.google.com/speech-api/v2/recognize"
	}
	if lang == "" {
		lang = "en-US"
	}
	return &GoogleRecognizer{
		endpoint: endpoint,
		key:      key,
		lang:     lang,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GoogleRecognizer) Recognize(ctx context.Context, samples []int, sampleRate int) (string, error) {
	q := url.Values{}
	q.Set("client", "chromium")
	q.Set("lang", g.lang)
	if g.key != "" {
		q.Set("key", g.key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.endpoint+"?"+q.Encode(), bytes.NewReader(encodeL16(samples)))
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	req.Header.Set("Content-Type", fmt.Sprintf("audio/l16; rate=%d", sampleRate))

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ServiceError{Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	// The endpoint streams one JSON object per line; the first line is
	// usually an empty result set.
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var reply struct {
			Result []struct {
				Alternative []struct {
					Transcript string `json:"transcript"`
				} `json:"alternative"`
			} `json:"result"`
		}
		if err := json.Unmarshal(line, &reply); err != nil {
			continue
		}
		for _, res := range reply.Result {
			for _, alt := range res.Alternative {
				if alt.Transcript != "" {
					return alt.Transcript, nil
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", &ServiceError{Err: err}
	}

	return "", ErrNoSpeech
}

// encodeL16 converts samples to 16-bit little-endian PCM, the wire format
// the recognition endpoint expects.
func encodeL16(samples []int) []byte {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(int16(s)))
	}
	return buf
}

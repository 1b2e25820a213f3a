package client

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// CaptionSegment is a single timed caption produced by transcription.
type CaptionSegment struct {
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
	Text  string  `json:"text"`
}

// Transcription is the normalized output of the captioning source.
type Transcription struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []CaptionSegment `json:"segments"`
}

// OpenAIClient wraps the OpenAI API client for Whisper transcription. It is
// the captioning/transcript source for lessons: audio in, timed segments out.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  openai.Whisper1,
	}
}

// WithModel sets the transcription model to use.
func (c *OpenAIClient) WithModel(model string) *OpenAIClient {
	c.model = model
	return c
}

// Transcribe sends audio data to the Whisper API and returns the transcript
// with sentence-level timed segments (verbose_json format).
//
// filename is only used by the API to detect the container format; it must
// carry a real extension (mp3, mp4, wav, webm, ...).
func (c *OpenAIClient) Transcribe(ctx context.Context, audioData []byte, filename, language string) (*Transcription, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		Reader:   bytes.NewReader(audioData),
		FilePath: filename,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: language,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	segments := make([]CaptionSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, CaptionSegment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}

	return &Transcription{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
		Segments: segments,
	}, nil
}

package synth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/book"
	"github.com/vaysari11/Final-supernova/internal/gemini"
)

// DefaultModel is the Gemini speech model.
const DefaultModel = "gemini-2.5-flash-preview-tts"

const narrationPrompt = "Narrate this Urdu text with a masterful, literary tone: "

// Gemini synthesizes speech through generateContent with the AUDIO modality.
type Gemini struct {
	client *gemini.Client
	model  string
	format audio.PCMFormat
	logger *log.Logger
}

// NewGemini creates a Gemini synthesizer. An empty model selects
// DefaultModel; a zero format selects DefaultFormat.
func NewGemini(client *gemini.Client, model string, format audio.PCMFormat) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if format.SampleRate == 0 {
		format = DefaultFormat
	}
	return &Gemini{client: client, model: model, format: format, logger: log.Default()}
}

func (g *Gemini) Format() audio.PCMFormat { return g.format }

// Model returns the model name, used in cache keys.
func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Synthesize(ctx context.Context, text string, voice book.Voice) ([]byte, error) {
	req := &gemini.Request{
		Contents: []gemini.Content{{Parts: []gemini.Part{{Text: narrationPrompt + text}}}},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &gemini.SpeechConfig{
				VoiceConfig: gemini.VoiceConfig{
					PrebuiltVoiceConfig: gemini.PrebuiltVoiceConfig{VoiceName: string(voice)},
				},
			},
		},
	}

	resp, err := g.client.GenerateContent(ctx, g.model, req)
	if err != nil {
		return nil, classify(err)
	}

	part, ok := resp.FirstPart()
	if !ok || part.InlineData == nil || part.InlineData.Data == "" {
		return nil, fmt.Errorf("%w: response carried no audio", ErrSynthesisFailed)
	}
	pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 audio: %v", ErrSynthesisFailed, err)
	}
	if rate := mediaRate(part.InlineData.MimeType); rate != 0 && rate != g.format.SampleRate {
		g.logger.Warn("speech service returned an unexpected sample rate", "got", rate, "want", g.format.SampleRate)
	}
	return pcm, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gemini.ErrRateLimited):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	default:
		return fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}
}

func mediaRate(mediaType string) int {
	_, params, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return 0
	}
	rate, _ := strconv.Atoi(params["rate"])
	return rate
}

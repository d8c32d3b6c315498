package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/vaysari11/Final-supernova/internal/gemini"
)

// DefaultModel is the Gemini model used to read documents.
const DefaultModel = "gemini-3-flash-preview"

const extractionPrompt = "Extract the Urdu text from this document. Break it into a logical array of paragraphs. " +
	"Keep each paragraph under 1000 characters. Return JSON: {title, paragraphs: string[]}"

var resultSchema = &gemini.Schema{
	Type: "OBJECT",
	Properties: map[string]*gemini.Schema{
		"title":      {Type: "STRING"},
		"paragraphs": {Type: "ARRAY", Items: &gemini.Schema{Type: "STRING"}},
	},
	Required: []string{"paragraphs"},
}

// Gemini reads scanned pages and PDFs with a multimodal model.
type Gemini struct {
	client *gemini.Client
	model  string
}

func NewGemini(client *gemini.Client, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}
}

// Extract sends the document inline and parses the structured reply. Plain
// text documents are split locally without a remote call.
func (g *Gemini) Extract(ctx context.Context, data []byte, mediaType string) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: empty document", ErrExtractionFailed)
	}
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil && mt == "text/plain" {
		return Text{}.Extract(ctx, data, mediaType)
	}

	req := &gemini.Request{
		Contents: []gemini.Content{{Parts: []gemini.Part{
			{InlineData: &gemini.InlineData{MimeType: mediaType, Data: base64.StdEncoding.EncodeToString(data)}},
			{Text: extractionPrompt},
		}}},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   resultSchema,
		},
	}

	resp, err := g.client.GenerateContent(ctx, g.model, req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		text = `{"paragraphs": []}`
	}
	var res Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return Result{}, fmt.Errorf("%w: malformed reply: %v", ErrExtractionFailed, err)
	}

	res.Title = strings.TrimSpace(norm.NFC.String(res.Title))
	paras := res.Paragraphs[:0]
	for _, p := range res.Paragraphs {
		if p = strings.TrimSpace(norm.NFC.String(p)); p != "" {
			paras = append(paras, p)
		}
	}
	res.Paragraphs = paras
	if len(res.Paragraphs) == 0 {
		return Result{}, fmt.Errorf("%w: no paragraphs found", ErrExtractionFailed)
	}
	return res, nil
}

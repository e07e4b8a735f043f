package extract

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// ErrOCRDisabled is returned by DisabledOCR; callers treat it as an
// external-capability failure.
var ErrOCRDisabled = errors.New("ocr is not configured")

const ocrPrompt = "Transcribe all visible text from the attached file exactly as it appears, " +
	"preserving line breaks. Output plain text only, no commentary and no Markdown."

// VisionOCR turns image or PDF bytes into plain text through the Gemini
// vision models.
type VisionOCR struct {
	client *genai.Client
	model  string
}

// NewVisionOCR creates the OCR client.
func NewVisionOCR(ctx context.Context, apiKey, model string) (*VisionOCR, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &VisionOCR{client: client, model: model}, nil
}

// Text transcribes the supplied bytes. mimeType must describe the payload
// ("image/png", "image/jpeg", "application/pdf").
func (o *VisionOCR) Text(ctx context.Context, data []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: ocrPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			},
		},
	}

	resp, err := o.client.Models.GenerateContent(ctx, o.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// DisabledOCR satisfies the OCR interface when no API key is configured.
type DisabledOCR struct{}

func (DisabledOCR) Text(context.Context, []byte, string) (string, error) {
	return "", ErrOCRDisabled
}

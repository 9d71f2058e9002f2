// File: services/vision/ocr.go
package vision

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/apiv1"
	"google.golang.org/api/option"

	"transitops/config"
)

// Extraction is the OCR collaborator's output: raw text plus how sure the
// engine is about it. The pipeline treats the text purely as a source of
// n-gram candidates.
type Extraction struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// OCRService extracts text from an uploaded image.
type OCRService interface {
	ExtractText(ctx context.Context, image []byte) (*Extraction, error)
}

// GoogleOCRService implements OCRService with the Cloud Vision API.
type GoogleOCRService struct{}

func NewGoogleOCRService() *GoogleOCRService { return &GoogleOCRService{} }

func (s *GoogleOCRService) ExtractText(ctx context.Context, image []byte) (*Extraction, error) {
	client, err := vision.NewImageAnnotatorClient(ctx,
		option.WithCredentialsFile(config.AppConfig.GoogleServiceAccountFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vision client: %w", err)
	}
	defer client.Close()

	img, err := vision.NewImageFromReader(bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	annotation, err := client.DetectDocumentText(ctx, img, nil)
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}
	if annotation == nil || annotation.Text == "" {
		return &Extraction{}, nil
	}

	// Average page confidence; the API reports one value per detected page.
	var sum float64
	for _, page := range annotation.Pages {
		sum += float64(page.Confidence)
	}
	confidence := 0.0
	if len(annotation.Pages) > 0 {
		confidence = sum / float64(len(annotation.Pages))
	}

	return &Extraction{
		Text:       strings.TrimSpace(annotation.Text),
		Confidence: confidence,
	}, nil
}

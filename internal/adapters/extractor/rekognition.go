package extractor

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/okian/ingredex/internal/domain/labeltext"
)

const minLineConfidence = 60

var listHeading = regexp.MustCompile(`(?i)ingredients\s*:`)

// DetectTextAPI is the part of the Rekognition client the extractor uses.
type DetectTextAPI interface {
	DetectText(ctx context.Context, in *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// Rekognition extracts label text with AWS Rekognition DetectText.
type Rekognition struct {
	client DetectTextAPI
}

// NewRekognition loads the default AWS config for region with SDK retries
// disabled.
func NewRekognition(ctx context.Context, region string) (*Rekognition, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRetryMaxAttempts(1)}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewRekognitionWithClient(rekognition.NewFromConfig(cfg)), nil
}

// NewRekognitionWithClient wraps an existing client.
func NewRekognitionWithClient(client DetectTextAPI) *Rekognition {
	return &Rekognition{client: client}
}

// Name implements Extractor.
func (r *Rekognition) Name() string { return KindRekognition }

// Extract implements Extractor. Only LINE detections are used; words would
// repeat every line.
func (r *Rekognition) Extract(ctx context.Context, img Image) ([]string, error) {
	data, err := os.ReadFile(img.Path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	out, err := r.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: data},
	})
	if err != nil {
		return nil, fmt.Errorf("detect text: %w", err)
	}

	var lines []string
	for _, d := range out.TextDetections {
		if d.Type != types.TextTypesLine || d.DetectedText == nil {
			continue
		}
		if d.Confidence != nil && *d.Confidence < minLineConfidence {
			continue
		}
		lines = append(lines, aws.ToString(d.DetectedText))
	}
	return labeltext.Split(stripListHeading(strings.Join(lines, "\n"))), nil
}

// stripListHeading drops everything up to and including an "ingredients:"
// heading, if there is one.
func stripListHeading(text string) string {
	if loc := listHeading.FindStringIndex(text); loc != nil {
		return text[loc[1]:]
	}
	return text
}

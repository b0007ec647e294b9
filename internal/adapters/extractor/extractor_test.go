package extractor_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	extractor "github.com/okian/ingredex/internal/adapters/extractor"
	scancache "github.com/okian/ingredex/internal/domain/scancache"
	. "github.com/smartystreets/goconvey/convey"
)

func writeImage(t *testing.T) extractor.Image {
	t.Helper()
	path := filepath.Join(t.TempDir(), "label.png")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o600); err != nil {
		t.Fatal(err)
	}
	return extractor.Image{Path: path, MIMEType: "image/png"}
}

type slowExtractor struct{}

func (slowExtractor) Name() string { return "slow" }

func (slowExtractor) Extract(ctx context.Context, _ extractor.Image) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Second):
		return []string{"late"}, nil
	}
}

type fakeDetectText struct {
	out *rekognition.DetectTextOutput
	err error
	got *rekognition.DetectTextInput
}

func (f *fakeDetectText) DetectText(_ context.Context, in *rekognition.DetectTextInput, _ ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	f.got = in
	return f.out, f.err
}

func TestNull(t *testing.T) {
	Convey("Given the null extractor", t, func() {
		ex, err := extractor.New(context.Background(), extractor.Settings{Kind: extractor.KindNull})
		So(err, ShouldBeNil)

		Convey("Then it returns the development list", func() {
			names, err := ex.Extract(context.Background(), extractor.Image{})
			So(err, ShouldBeNil)
			So(names, ShouldResemble, []string{"Sugar", "Salt", "Citric Acid", "Ascorbic Acid", "Natural Flavors"})
			So(ex.Name(), ShouldEqual, "null")
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given extractor settings", t, func() {
		Convey("When the kind is unknown", func() {
			_, err := extractor.New(context.Background(), extractor.Settings{Kind: "tesseract"})
			So(errors.Is(err, extractor.ErrUnknownExtractor), ShouldBeTrue)
		})

		Convey("When gemini has no key", func() {
			_, err := extractor.New(context.Background(), extractor.Settings{Kind: extractor.KindGemini})
			So(errors.Is(err, extractor.ErrMissingAPIKey), ShouldBeTrue)
		})
	})
}

func TestWithTimeout(t *testing.T) {
	Convey("Given a slow extractor with a short deadline", t, func() {
		ex := extractor.WithTimeout(slowExtractor{}, 20*time.Millisecond, nil)

		Convey("When it is called", func() {
			start := time.Now()
			_, err := ex.Extract(context.Background(), extractor.Image{})

			Convey("Then it fails fast as an extraction failure", func() {
				So(time.Since(start), ShouldBeLessThan, 500*time.Millisecond)
				So(errors.Is(err, extractor.ErrExtractionFailed), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}

func TestGemini(t *testing.T) {
	Convey("Given a gemini extractor against a fake API", t, func() {
		img := writeImage(t)
		var gotPath, gotKey string
		var gotBody map[string]any
		status := http.StatusOK
		reply := `{"candidates":[{"content":{"parts":[{"text":"Sugar, Water\nE621\n"}]}}]}`

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.URL.Query().Get("key")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		defer srv.Close()

		g, err := extractor.NewGemini("secret",
			extractor.WithBaseURL(srv.URL),
			extractor.WithModel("test-model"),
			extractor.WithHTTPClient(srv.Client()))
		So(err, ShouldBeNil)

		Convey("When the API answers", func() {
			names, err := g.Extract(context.Background(), img)

			Convey("Then the reply is split into names", func() {
				So(err, ShouldBeNil)
				So(names, ShouldResemble, []string{"Sugar", "Water", "E621"})
				So(gotPath, ShouldEqual, "/models/test-model:generateContent")
				So(gotKey, ShouldEqual, "secret")
			})

			Convey("And the request carries the prompt and image", func() {
				raw, _ := json.Marshal(gotBody)
				So(string(raw), ShouldContainSubstring, "extract the ingredient list")
				So(string(raw), ShouldContainSubstring, `"mimeType":"image/png"`)
			})
		})

		Convey("When the API fails", func() {
			status = http.StatusInternalServerError
			reply = `{"error":"boom"}`
			_, err := g.Extract(context.Background(), img)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "500")
		})

		Convey("When the API returns no candidates", func() {
			reply = `{"candidates":[]}`
			_, err := g.Extract(context.Background(), img)
			So(errors.Is(err, extractor.ErrExtractionFailed), ShouldBeTrue)
		})
	})
}

func TestRekognition(t *testing.T) {
	Convey("Given a rekognition extractor with a fake client", t, func() {
		img := writeImage(t)
		fake := &fakeDetectText{out: &rekognition.DetectTextOutput{
			TextDetections: []types.TextDetection{
				{Type: types.TextTypesLine, DetectedText: aws.String("INGREDIENTS: Sugar, Water,"), Confidence: aws.Float32(99)},
				{Type: types.TextTypesWord, DetectedText: aws.String("Sugar"), Confidence: aws.Float32(99)},
				{Type: types.TextTypesLine, DetectedText: aws.String("Colour (E102)"), Confidence: aws.Float32(95)},
				{Type: types.TextTypesLine, DetectedText: aws.String("smudge"), Confidence: aws.Float32(12)},
			},
		}}
		ex := extractor.NewRekognitionWithClient(fake)

		Convey("When text is detected", func() {
			names, err := ex.Extract(context.Background(), img)

			Convey("Then confident lines become candidate names", func() {
				So(err, ShouldBeNil)
				So(names, ShouldResemble, []string{"Sugar", "Water", "Colour (E102)"})
				So(strings.HasPrefix(string(fake.got.Image.Bytes), "\x89PNG"), ShouldBeTrue)
			})
		})

		Convey("When the service fails", func() {
			fake.err = errors.New("throttled")
			_, err := extractor.WithTimeout(ex, time.Second, nil).Extract(context.Background(), img)
			So(errors.Is(err, extractor.ErrExtractionFailed), ShouldBeTrue)
		})
	})
}

type countingExtractor struct {
	calls int
	err   error
}

func (c *countingExtractor) Name() string { return "counting" }

func (c *countingExtractor) Extract(context.Context, extractor.Image) ([]string, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []string{"Sugar", "Salt"}, nil
}

func TestWithCache(t *testing.T) {
	Convey("Given a cached extractor", t, func() {
		ctx := context.Background()
		inner := &countingExtractor{}
		ex := extractor.WithCache(inner, scancache.NewInMemoryCache(scancache.WithMaxSize(4)), nil)
		img := writeImage(t)

		Convey("When the same image is scanned twice", func() {
			first, err := ex.Extract(ctx, img)
			So(err, ShouldBeNil)
			second, err := ex.Extract(ctx, img)
			So(err, ShouldBeNil)

			Convey("Then the inner extractor runs once", func() {
				So(inner.calls, ShouldEqual, 1)
				So(second, ShouldResemble, first)
				So(ex.Name(), ShouldEqual, "counting")
			})
		})

		Convey("When a different image is scanned", func() {
			_, _ = ex.Extract(ctx, img)
			other := filepath.Join(t.TempDir(), "other.png")
			So(os.WriteFile(other, []byte("\x89PNG\r\n\x1a\nother"), 0o600), ShouldBeNil)
			_, err := ex.Extract(ctx, extractor.Image{Path: other, MIMEType: "image/png"})
			So(err, ShouldBeNil)
			So(inner.calls, ShouldEqual, 2)
		})

		Convey("When extraction fails", func() {
			inner.err = errors.New("vision down")
			_, err := ex.Extract(ctx, img)
			So(err, ShouldNotBeNil)
			inner.err = nil
			names, err := ex.Extract(ctx, img)

			Convey("Then the failure is not cached", func() {
				So(err, ShouldBeNil)
				So(names, ShouldResemble, []string{"Sugar", "Salt"})
				So(inner.calls, ShouldEqual, 2)
			})
		})

		Convey("When the image cannot be read", func() {
			_, err := ex.Extract(ctx, extractor.Image{Path: filepath.Join(t.TempDir(), "missing.png")})
			So(err, ShouldBeNil)
			_, _ = ex.Extract(ctx, extractor.Image{Path: filepath.Join(t.TempDir(), "missing.png")})
			So(inner.calls, ShouldEqual, 2)
		})
	})
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/okian/ingredex/internal/adapters/extractor"
	"github.com/okian/ingredex/internal/adapters/http/api"
	"github.com/okian/ingredex/internal/adapters/uploads"
	service "github.com/okian/ingredex/internal/app"
	"github.com/okian/ingredex/internal/domain/catalog"
	"github.com/okian/ingredex/internal/domain/model"
	"github.com/okian/ingredex/internal/domain/resolver"
	"github.com/okian/ingredex/internal/domain/types"
	"github.com/okian/ingredex/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithOutput(io.Discard))
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

// Mock implementations for testing
type mockDependencies struct {
	records   []model.IngredientRecord
	lookup    func(name string, rc *model.RequestContext) (model.ScoredIngredient, error)
	matches   []string
	scan      func(img extractor.Image) (model.ScanResult, error)
	lastRC    *model.RequestContext
	lastImage extractor.Image
	listErr   error
}

func (m *mockDependencies) Ingredients(context.Context) ([]model.IngredientRecord, error) {
	return m.records, m.listErr
}

func (m *mockDependencies) Lookup(_ context.Context, name string, rc *model.RequestContext) (model.ScoredIngredient, error) {
	m.lastRC = rc
	return m.lookup(name, rc)
}

func (m *mockDependencies) Matches(context.Context, string) ([]string, error) {
	return m.matches, nil
}

func (m *mockDependencies) Scan(_ context.Context, img extractor.Image, rc *model.RequestContext) (model.ScanResult, error) {
	m.lastRC = rc
	m.lastImage = img
	if _, err := os.Stat(img.Path); err != nil {
		return model.ScanResult{}, fmt.Errorf("image not on disk: %w", err)
	}
	return m.scan(img)
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func sugar() model.IngredientRecord {
	for _, r := range catalog.Builtin() {
		if r.Name == "Sugar" {
			return r
		}
	}
	panic("sugar missing from builtin catalog")
}

func newMux(deps api.Dependencies, store *uploads.Store) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"scans": 3}}, store).
		Register(context.Background(), mux)
	return mux
}

func multipartBody(field, filename string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	_ = mw.WriteField("note", "ignored")
	if field != "" {
		fw, _ := mw.CreateFormFile(field, filename)
		_, _ = fw.Write(content)
	}
	_ = mw.Close()
	return body, mw.FormDataContentType()
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{records: []model.IngredientRecord{sugar()}}
		store, err := uploads.New(t.TempDir())
		So(err, ShouldBeNil)
		mux := newMux(deps, store)

		Convey("When calling the health endpoint", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody))

			Convey("Then the server reports itself running", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode[types.HealthResponse](w)
				So(body.Status, ShouldEqual, "OK")
				So(body.Message, ShouldEqual, "Server is running")
			})
		})

		Convey("When scraping metrics", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When reading stats", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"scans":3`)
		})

		Convey("When using the wrong method", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/scan/ocr", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestIngredientHandler(t *testing.T) {
	Convey("Given an API backed by mock dependencies", t, func() {
		deps := &mockDependencies{
			records: []model.IngredientRecord{sugar()},
			lookup: func(name string, rc *model.RequestContext) (model.ScoredIngredient, error) {
				if name != "sugar" {
					return model.ScoredIngredient{}, fmt.Errorf("lookup %q: %w", name, resolver.ErrNotFound)
				}
				return model.ScoredIngredient{Record: sugar(), Score: 2, Explanation: "adjusted", Education: "About Sugar"}, nil
			},
		}
		store, err := uploads.New(t.TempDir())
		So(err, ShouldBeNil)
		mux := newMux(deps, store)

		Convey("When listing ingredients", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ingredients", http.NoBody))

			Convey("Then base scores are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				list := decode[[]types.Ingredient](w)
				So(len(list), ShouldEqual, 1)
				So(list[0].Name, ShouldEqual, "Sugar")
				So(list[0].SafetyScore, ShouldEqual, 4)
			})
		})

		Convey("When listing fails", func() {
			deps.listErr = errors.New("store offline")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ingredients", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldNotContainSubstring, "store offline")
		})

		Convey("When getting a known ingredient with context", func() {
			w := httptest.NewRecorder()
			url := "/api/ingredients/sugar?ageGroup=child&healthConditions=diabetes&healthConditions=blood-pressure,diabetes&consumptionFrequency=daily"
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, http.NoBody))

			Convey("Then the adjusted score is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				in := decode[types.Ingredient](w)
				So(in.SafetyScore, ShouldEqual, 2)
				So(in.SafetyExplanation, ShouldEqual, "adjusted")
				So(in.EducationalContext, ShouldEqual, "About Sugar")
			})

			Convey("And the parsed context reaches the service", func() {
				So(deps.lastRC, ShouldResemble, &model.RequestContext{
					AgeGroup:             model.AgeChild,
					HealthConditions:     []model.Condition{model.ConditionDiabetes, model.ConditionBloodPressure},
					ConsumptionFrequency: model.FrequencyDaily,
				})
			})
		})

		Convey("When getting an ingredient without context", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ingredients/sugar", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastRC, ShouldBeNil)
		})

		Convey("When the ingredient is unknown", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ingredients/unobtainium", http.NoBody))

			Convey("Then a not found error is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldEqual, `{"code":"not_found","message":"Ingredient not found"}`+"\n")
			})
		})

		Convey("When a context value is invalid", func() {
			cases := []struct {
				query string
				param string
			}{
				{"ageGroup=toddler", "ageGroup"},
				{"healthConditions=gout", "healthConditions"},
				{"consumptionFrequency=hourly", "consumptionFrequency"},
			}
			for _, tc := range cases {
				Convey("Then "+tc.query+" is rejected", func() {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ingredients/sugar?"+tc.query, http.NoBody))
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
					So(w.Body.String(), ShouldContainSubstring, tc.param)
				})
			}
		})

		Convey("When asking for matches", func() {
			deps.matches = []string{"High Fructose Corn Syrup", "Sorbitol"}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ingredients/E967/matches", http.NoBody))

			Convey("Then the query and matched names are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode[types.MatchesResponse](w)
				So(body.Query, ShouldEqual, "E967")
				So(body.Matches, ShouldResemble, []string{"High Fructose Corn Syrup", "Sorbitol"})
			})
		})

		Convey("When nothing matches", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ingredients/zzz/matches", http.NoBody))
			So(w.Body.String(), ShouldContainSubstring, `"matches":[]`)
		})
	})
}

func TestScanHandler(t *testing.T) {
	Convey("Given an API with an upload store", t, func() {
		dir := t.TempDir()
		store, err := uploads.New(dir, uploads.WithMaxBytes(1024))
		So(err, ShouldBeNil)
		deps := &mockDependencies{
			scan: func(extractor.Image) (model.ScanResult, error) {
				return model.ScanResult{
					OriginalText: []string{"Sugar", "Glitter"},
					Ingredients:  []model.ScoredIngredient{{Record: sugar(), Score: 4}},
				}, nil
			},
		}
		mux := newMux(deps, store)

		post := func(url string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, url, body)
			if contentType != "" {
				req.Header.Set("Content-Type", contentType)
			}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When a label image is uploaded", func() {
			body, ct := multipartBody("image", "label.png", pngBytes)
			w := post("/api/scan/ocr?ageGroup=adult", body, ct)

			Convey("Then the matched ingredients are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				res := decode[types.ScanResponse](w)
				So(res.Success, ShouldBeTrue)
				So(res.OriginalText, ShouldResemble, []string{"Sugar", "Glitter"})
				So(len(res.Ingredients), ShouldEqual, 1)
				So(res.Message, ShouldEqual, "1 ingredients successfully analyzed")
			})

			Convey("And the image was sniffed and released", func() {
				So(deps.lastImage.MIMEType, ShouldEqual, "image/png")
				So(deps.lastRC.AgeGroup, ShouldEqual, model.AgeAdult)
				So(store.Outstanding(), ShouldEqual, int64(0))
				entries, _ := os.ReadDir(dir)
				So(entries, ShouldBeEmpty)
			})
		})

		Convey("When nothing on the label is recognised", func() {
			deps.scan = func(extractor.Image) (model.ScanResult, error) {
				return model.ScanResult{OriginalText: []string{"Glitter"}}, nil
			}
			body, ct := multipartBody("image", "label.png", pngBytes)
			w := post("/api/scan/ocr", body, ct)
			res := decode[types.ScanResponse](w)
			So(res.Success, ShouldBeTrue)
			So(res.Message, ShouldEqual, "No ingredients identified in the image")
			So(w.Body.String(), ShouldContainSubstring, `"ingredients":[]`)
		})

		Convey("When no image field is sent", func() {
			body, ct := multipartBody("", "", nil)
			w := post("/api/scan/ocr", body, ct)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				res := decode[types.ScanResponse](w)
				So(res.Success, ShouldBeFalse)
				So(res.Message, ShouldEqual, "No image file provided")
			})
		})

		Convey("When the body is not multipart", func() {
			w := post("/api/scan/ocr", bytes.NewBufferString(`{"image":"x"}`), "application/json")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the upload is not an image", func() {
			body, ct := multipartBody("image", "notes.txt", []byte("just some text, not a picture"))
			w := post("/api/scan/ocr", body, ct)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[types.ScanResponse](w).Message, ShouldEqual, "Only image files are allowed")
			So(store.Outstanding(), ShouldEqual, int64(0))
		})

		Convey("When the upload is too large", func() {
			big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{1}, 2048)...)
			body, ct := multipartBody("image", "big.png", big)
			w := post("/api/scan/ocr", body, ct)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			entries, _ := os.ReadDir(dir)
			So(entries, ShouldBeEmpty)
		})

		Convey("When the context is invalid", func() {
			body, ct := multipartBody("image", "label.png", pngBytes)
			w := post("/api/scan/ocr?consumptionFrequency=never", body, ct)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When extraction fails", func() {
			deps.scan = func(extractor.Image) (model.ScanResult, error) {
				return model.ScanResult{}, fmt.Errorf("%w: gemini: quota exceeded", extractor.ErrExtractionFailed)
			}
			body, ct := multipartBody("image", "label.png", pngBytes)
			w := post("/api/scan/ocr", body, ct)

			Convey("Then a failed scan is reported with empty arrays", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				res := decode[types.ScanResponse](w)
				So(res.Success, ShouldBeFalse)
				So(res.Message, ShouldEqual, "OCR analysis failed")
				So(res.Error, ShouldContainSubstring, "quota exceeded")
				So(res.OriginalText, ShouldBeEmpty)
				So(res.Ingredients, ShouldBeEmpty)
			})

			Convey("And the temp file is still released", func() {
				So(store.Outstanding(), ShouldEqual, int64(0))
			})
		})

		Convey("When the scan panics", func() {
			deps.scan = func(extractor.Image) (model.ScanResult, error) {
				panic("boom")
			}
			body, ct := multipartBody("image", "label.png", pngBytes)
			w := post("/api/scan/ocr", body, ct)

			Convey("Then an internal error is returned and the file released", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, `"code":"internal_error"`)
				So(store.Outstanding(), ShouldEqual, int64(0))
				entries, _ := os.ReadDir(dir)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}

func TestServerWithService(t *testing.T) {
	Convey("Given the API wired to the real service", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		store, err := uploads.New(t.TempDir())
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		api.NewServer(svc, svc, store).Register(context.Background(), mux)

		Convey("When aspartame is looked up for someone managing diabetes", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ingredients/aspartame?healthConditions=diabetes", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode[types.Ingredient](w).SafetyScore, ShouldEqual, 6)
		})

		Convey("When sugar is looked up for a child", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ingredients/Sugar?ageGroup=child", http.NoBody))
			So(decode[types.Ingredient](w).SafetyScore, ShouldEqual, 2)
		})

		Convey("When a label is scanned with the null extractor", func() {
			body, ct := multipartBody("image", "label.png", pngBytes)
			req := httptest.NewRequest(http.MethodPost, "/api/scan/ocr", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the mock label is resolved", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				res := decode[types.ScanResponse](w)
				So(res.Success, ShouldBeTrue)
				So(len(res.OriginalText), ShouldEqual, 5)
				So(len(res.Ingredients), ShouldBeGreaterThan, 0)
				So(store.Outstanding(), ShouldEqual, int64(0))
			})
		})
	})
}

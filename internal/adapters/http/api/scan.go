package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/ingredex/internal/adapters/extractor"
	"github.com/okian/ingredex/internal/adapters/uploads"
	"github.com/okian/ingredex/internal/domain/model"
	"github.com/okian/ingredex/internal/domain/types"
	"github.com/okian/ingredex/pkg/logger"
)

const (
	imageField = "image"

	// Room for multipart headers and boundaries on top of the image itself.
	multipartOverhead = 64 << 10
)

// ScanHandler accepts label photos and returns the ingredients found on them.
type ScanHandler struct {
	deps  Dependencies
	store *uploads.Store
	log   logger.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(deps Dependencies, store *uploads.Store, log logger.Logger) *ScanHandler {
	return &ScanHandler{deps: deps, store: store, log: log}
}

// HandleScan handles POST /api/scan/ocr. The image is read from the
// multipart field "image"; context parameters come from the query string.
func (h *ScanHandler) HandleScan(w http.ResponseWriter, r *http.Request) {
	const op = "api.scan_label"
	ctx := r.Context()

	rc, err := parseContext(r.URL.Query())
	if err != nil {
		writeScan(w, http.StatusBadRequest, failedScan("Invalid request context", WrapKind(op, ErrBadRequest, err)))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxBytes()+multipartOverhead)
	tf, err := h.receive(ctx, r)
	if err != nil {
		status, msg := uploadFailure(err)
		h.log.Debug(ctx, "upload rejected", logger.String("op", op), logger.Error(err))
		writeScan(w, status, failedScan(msg, err))
		return
	}
	defer func() { _ = tf.Release() }()

	res, err := h.deps.Scan(ctx, extractor.Image{Path: tf.Path, MIMEType: tf.MIMEType}, rc)
	if err != nil {
		h.log.Error(ctx, "label scan failed",
			logger.String("op", op),
			logger.String("file", tf.Name()),
			logger.Error(err),
		)
		writeScan(w, http.StatusInternalServerError, failedScan("OCR analysis failed", err))
		return
	}

	writeScan(w, http.StatusOK, scanResponse(res))
}

// receive streams the first file part named "image" into the upload store.
func (h *ScanHandler) receive(ctx context.Context, r *http.Request) (*uploads.TempFile, error) {
	const op = "api.receive_image"

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, NewKind(op, ErrMissingImage)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, NewKind(op, ErrMissingImage)
		}
		if err != nil {
			return nil, WrapKind(op, ErrBadRequest, fmt.Errorf("read multipart body: %w", err))
		}
		if part.FormName() != imageField || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		tf, err := h.store.Acquire(ctx, part)
		_ = part.Close()
		return tf, err
	}
}

func uploadFailure(err error) (int, string) {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, ErrMissingImage):
		return http.StatusBadRequest, "No image file provided"
	case errors.Is(err, uploads.ErrEmptyUpload):
		return http.StatusBadRequest, "Uploaded image is empty"
	case errors.Is(err, uploads.ErrUnsupportedMedia):
		return http.StatusBadRequest, "Only image files are allowed"
	case errors.Is(err, uploads.ErrUploadTooLarge), errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge, "Image exceeds the upload size limit"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "Malformed upload"
	default:
		return http.StatusInternalServerError, "Could not store the uploaded image"
	}
}

func scanResponse(res model.ScanResult) types.ScanResponse {
	out := types.ScanResponse{
		Success:      true,
		OriginalText: res.OriginalText,
		Ingredients:  make([]types.Ingredient, 0, len(res.Ingredients)),
	}
	if out.OriginalText == nil {
		out.OriginalText = []string{}
	}
	for _, si := range res.Ingredients {
		out.Ingredients = append(out.Ingredients, types.FromScored(si))
	}
	if n := len(out.Ingredients); n > 0 {
		out.Message = fmt.Sprintf("%d ingredients successfully analyzed", n)
	} else {
		out.Message = "No ingredients identified in the image"
	}
	return out
}

func failedScan(msg string, err error) types.ScanResponse {
	return types.ScanResponse{
		Success:      false,
		OriginalText: []string{},
		Ingredients:  []types.Ingredient{},
		Message:      msg,
		Error:        err.Error(),
	}
}

func writeScan(w http.ResponseWriter, status int, body types.ScanResponse) {
	writeJSON(w, status, body)
}

package image

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/vladmycode/imager/internal/domain"
	"github.com/vladmycode/imager/internal/http-server/handler/image/dto"
	repo "github.com/vladmycode/imager/internal/repository/image"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/wb-go/wbf/zlog"
)

type stubUsecase struct {
	images     map[string]*domain.Image
	lastOps    []domain.OperationParams
	uploadErr  error
	deletedIDs []string
}

func newStubUsecase() *stubUsecase {
	return &stubUsecase{images: make(map[string]*domain.Image)}
}

func (s *stubUsecase) UploadImage(ctx context.Context, data []byte, filename string, operations []domain.OperationParams) (*domain.Image, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}

	s.lastOps = operations
	img := &domain.Image{
		ID:               "test-id",
		OriginalFilename: filename,
		OriginalSize:     int64(len(data)),
		Status:           domain.StatusUploaded,
		CreatedAt:        time.Now(),
	}
	s.images[img.ID] = img
	return img, nil
}

func (s *stubUsecase) GetImage(ctx context.Context, id string) (*domain.Image, []domain.RenderedImage, error) {
	img, ok := s.images[id]
	if !ok {
		return nil, nil, repo.ErrImageNotFound
	}
	return img, nil, nil
}

func (s *stubUsecase) GetRenderedFile(ctx context.Context, id, operation string) ([]byte, string, error) {
	if _, ok := s.images[id]; !ok {
		return nil, "", repo.ErrImageNotFound
	}
	return []byte("image-bytes"), "image/jpeg", nil
}

func (s *stubUsecase) GetOriginalFile(ctx context.Context, id string) ([]byte, string, error) {
	if _, ok := s.images[id]; !ok {
		return nil, "", repo.ErrImageNotFound
	}
	return []byte("original-bytes"), "image/png", nil
}

func (s *stubUsecase) GetStatus(ctx context.Context, id string) (*domain.Image, error) {
	img, ok := s.images[id]
	if !ok {
		return nil, repo.ErrImageNotFound
	}
	return img, nil
}

func (s *stubUsecase) ListImages(ctx context.Context, limit, offset int) ([]domain.Image, error) {
	var out []domain.Image
	for _, img := range s.images {
		out = append(out, *img)
	}
	return out, nil
}

func (s *stubUsecase) DeleteImage(ctx context.Context, id string) error {
	if _, ok := s.images[id]; !ok {
		return repo.ErrImageNotFound
	}
	delete(s.images, id)
	s.deletedIDs = append(s.deletedIDs, id)
	return nil
}

func newTestRouter(uc imageUsecase) http.Handler {
	zlog.Init()
	h := NewImageHandler(uc, &zlog.Logger)

	r := chi.NewRouter()
	r.Post("/api/images/upload", h.UploadImage)
	r.Get("/api/images/{id}", h.GetImage)
	r.Get("/api/images/{id}/status", h.GetStatus)
	r.Delete("/api/images/{id}", h.DeleteImage)
	return r
}

func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	src := imaging.New(10, 10, color.NRGBA{R: 200, A: 255})
	imgBuf := new(bytes.Buffer)
	if err := imaging.Encode(imgBuf, src, imaging.PNG); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="test.png"`)
	header.Set("Content-Type", "image/png")

	fw, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write(imgBuf.Bytes()); err != nil {
		t.Fatalf("failed to write file field: %v", err)
	}

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return body, w.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	uc := newStubUsecase()
	router := newTestRouter(uc)

	body, contentType := multipartUpload(t, map[string]string{
		"force_fit":    "false",
		"border_width": "15",
		"border_color": "255,255,255,35",
		"thumbnail":    "true",
		"caption_text": "Breaking news",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	var resp dto.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "test-id" {
		t.Errorf("id = %s, want test-id", resp.ID)
	}

	if len(uc.lastOps) != 3 {
		t.Fatalf("operations = %d, want 3 (compose, thumbnail, caption)", len(uc.lastOps))
	}
	if uc.lastOps[0].Type != domain.OpCompose {
		t.Errorf("first operation = %s, want %s", uc.lastOps[0].Type, domain.OpCompose)
	}

	composeParams := uc.lastOps[0].Parameters
	if v, ok := composeParams[domain.ParamForceFit].(bool); !ok || v {
		t.Errorf("force_fit param = %v, want false", composeParams[domain.ParamForceFit])
	}
	if v, ok := composeParams[domain.ParamBorderWidth].(int); !ok || v != 15 {
		t.Errorf("border_width param = %v, want 15", composeParams[domain.ParamBorderWidth])
	}
}

func TestUploadImage_MissingFile(t *testing.T) {
	router := newTestRouter(newStubUsecase())

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	_ = w.WriteField("thumbnail", "true")
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUploadImage_InvalidOptions(t *testing.T) {
	router := newTestRouter(newStubUsecase())

	body, contentType := multipartUpload(t, map[string]string{
		"canvas_width": "nope",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetStatus(t *testing.T) {
	uc := newStubUsecase()
	uc.images["img-1"] = &domain.Image{
		ID:     "img-1",
		Status: domain.StatusCompleted,
	}

	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/api/images/img-1/status", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp dto.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.StatusCompleted) {
		t.Errorf("status = %s, want %s", resp.Status, domain.StatusCompleted)
	}
}

func TestGetStatus_NotFound(t *testing.T) {
	router := newTestRouter(newStubUsecase())

	req := httptest.NewRequest(http.MethodGet, "/api/images/missing/status", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGetImage(t *testing.T) {
	uc := newStubUsecase()
	uc.images["img-1"] = &domain.Image{
		ID:               "img-1",
		OriginalFilename: "photo.jpg",
		Status:           domain.StatusCompleted,
	}

	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/api/images/img-1", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content-type = %s, want image/jpeg", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("image-bytes")) {
		t.Error("body does not match rendered bytes")
	}
}

func TestDeleteImage(t *testing.T) {
	uc := newStubUsecase()
	uc.images["img-1"] = &domain.Image{ID: "img-1"}

	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodDelete, "/api/images/img-1", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(uc.deletedIDs) != 1 || uc.deletedIDs[0] != "img-1" {
		t.Errorf("deleted = %v, want [img-1]", uc.deletedIDs)
	}
}

func TestDeleteImage_NotFound(t *testing.T) {
	router := newTestRouter(newStubUsecase())

	req := httptest.NewRequest(http.MethodDelete, "/api/images/missing", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

package image

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vladmycode/imager/internal/domain"
	"github.com/vladmycode/imager/internal/http-server/handler/image/dto"
	repo "github.com/vladmycode/imager/internal/repository/image"
	image_uc "github.com/vladmycode/imager/internal/usecase/image"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const (
	maxMemory = 32 << 20
)

type ImageHandler struct {
	usecase  imageUsecase
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewImageHandler(usecase imageUsecase, logger *zlog.Zerolog) *ImageHandler {
	return &ImageHandler{
		usecase:  usecase,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, domain.DefaultMaxUploadSize)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.logger.Warn().Err(err).Msg("failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		h.logger.Warn().Err(err).Msg("file not found in request")
		h.respondError(w, http.StatusBadRequest, "File is required", nil)
		return
	}
	defer file.Close()

	if err := h.validateFile(handler); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	opts, err := h.parseComposeOptions(r.Form)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.validate.Struct(opts); err != nil {
		h.logger.Warn().Err(err).Msg("invalid compose options")
		h.respondError(w, http.StatusBadRequest, "Invalid composition options", err)
		return
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", handler.Filename).Msg("failed to read file")
		h.respondError(w, http.StatusInternalServerError, "Failed to read file", err)
		return
	}

	operations := buildOperations(opts)

	img, err := h.usecase.UploadImage(ctx, fileBytes, handler.Filename, operations)
	if err != nil {
		h.handleUploadError(w, err, handler.Filename)
		return
	}

	response := dto.UploadResponse{
		ID:        img.ID,
		Filename:  img.OriginalFilename,
		Status:    string(img.Status),
		Size:      img.OriginalSize,
		CreatedAt: img.CreatedAt,
	}

	h.logger.Info().
		Str("image_id", img.ID).
		Str("filename", img.OriginalFilename).
		Str("status", string(img.Status)).
		Msg("image uploaded")

	h.respondJSON(w, http.StatusAccepted, response)
}

func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := dto.GetImageRequest{
		ID:        chi.URLParam(r, "id"),
		Operation: r.URL.Query().Get("operation"),
	}

	if req.ID == "" {
		h.respondError(w, http.StatusBadRequest, "Image ID is required", nil)
		return
	}

	img, err := h.usecase.GetStatus(ctx, req.ID)
	if err != nil {
		h.handleGetImageError(w, err, req.ID, req.Operation)
		return
	}

	data, contentType, err := h.usecase.GetRenderedFile(ctx, req.ID, req.Operation)
	if err != nil {
		h.handleGetImageError(w, err, req.ID, req.Operation)
		return
	}

	filename := h.getDownloadFilename(img.OriginalFilename, req.Operation)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := w.Write(data); err != nil {
		h.logger.Error().
			Err(err).
			Str("image_id", req.ID).
			Str("operation", req.Operation).
			Msg("failed to stream image")
	}
}

func (h *ImageHandler) GetOriginal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Image ID is required", nil)
		return
	}

	img, err := h.usecase.GetStatus(ctx, id)
	if err != nil {
		h.handleGetImageError(w, err, id, "")
		return
	}

	data, contentType, err := h.usecase.GetOriginalFile(ctx, id)
	if err != nil {
		h.handleGetImageError(w, err, id, "")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.OriginalFilename))

	if _, err := w.Write(data); err != nil {
		h.logger.Error().Err(err).Str("image_id", id).Msg("failed to stream original")
	}
}

func (h *ImageHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := dto.StatusRequest{
		ID: chi.URLParam(r, "id"),
	}

	if req.ID == "" {
		h.respondError(w, http.StatusBadRequest, "Image ID is required", nil)
		return
	}

	img, rendered, err := h.usecase.GetImage(ctx, req.ID)
	if err != nil {
		h.handleStatusError(w, err, req.ID)
		return
	}

	response := dto.StatusResponse{
		ID:     img.ID,
		Status: string(img.Status),
	}

	for _, ri := range rendered {
		response.Rendered = append(response.Rendered, dto.RenderedResponse{
			Operation: string(ri.Operation),
			Path:      ri.Path,
			Size:      ri.Size,
			Format:    string(ri.Format),
			CreatedAt: ri.CreatedAt,
		})
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	images, err := h.usecase.ListImages(ctx, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list images")
		h.respondError(w, http.StatusInternalServerError, "Failed to list images", err)
		return
	}

	response := dto.ListResponse{
		Images: make([]dto.ImageResponse, 0, len(images)),
		Limit:  limit,
		Offset: offset,
	}

	for _, img := range images {
		response.Images = append(response.Images, dto.ImageResponse{
			ID:        img.ID,
			Filename:  img.OriginalFilename,
			Status:    string(img.Status),
			Size:      img.OriginalSize,
			MimeType:  img.MimeType,
			CreatedAt: img.CreatedAt,
			UpdatedAt: img.UpdatedAt,
		})
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := dto.DeleteRequest{
		ID: chi.URLParam(r, "id"),
	}

	if req.ID == "" {
		h.respondError(w, http.StatusBadRequest, "Image ID is required", nil)
		return
	}

	if err := h.usecase.DeleteImage(ctx, req.ID); err != nil {
		h.handleDeleteError(w, err, req.ID)
		return
	}

	h.logger.Info().Str("image_id", req.ID).Msg("image deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *ImageHandler) validateFile(handler *multipart.FileHeader) error {
	if handler.Size > domain.DefaultMaxUploadSize {
		return fmt.Errorf("File is too large (max %d MB)", domain.DefaultMaxUploadSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	if !h.isValidExtension(ext) {
		return fmt.Errorf("Unsupported file format. Allowed: jpg, jpeg, png, gif, webp, bmp, tiff")
	}

	contentType := handler.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("File must be an image")
	}

	return nil
}

func (h *ImageHandler) isValidExtension(ext string) bool {
	allowed := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
		".bmp":  true,
		".tiff": true,
	}
	return allowed[ext]
}

func (h *ImageHandler) parseComposeOptions(form url.Values) (*dto.ComposeOptions, error) {
	opts := &dto.ComposeOptions{
		BorderColor: form.Get("border_color"),
		CaptionText: form.Get("caption_text"),
		CaptionPos:  form.Get("caption_position"),
	}

	intFields := map[string]*int{
		"canvas_width":   &opts.CanvasWidth,
		"canvas_height":  &opts.CanvasHeight,
		"blur_radius":    &opts.BlurRadius,
		"border_width":   &opts.BorderWidth,
		"thumbnail_size": &opts.ThumbnailSize,
	}
	for field, dst := range intFields {
		raw := form.Get(field)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", field)
		}
		*dst = v
	}

	boolFields := map[string]**bool{
		"force_fit":       &opts.ForceFit,
		"background_blur": &opts.BackgroundBlur,
		"border":          &opts.Border,
	}
	for field, dst := range boolFields {
		raw := form.Get(field)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", field)
		}
		*dst = &v
	}

	if raw := form.Get("thumbnail"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("thumbnail must be true or false")
		}
		opts.Thumbnail = v
	}

	return opts, nil
}

// buildOperations turns the form options into the task operation list.
// Compose always runs; thumbnail and caption are opt-in.
func buildOperations(opts *dto.ComposeOptions) []domain.OperationParams {
	composeParams := map[string]interface{}{}

	if opts.CanvasWidth > 0 {
		composeParams[domain.ParamCanvasWidth] = opts.CanvasWidth
	}
	if opts.CanvasHeight > 0 {
		composeParams[domain.ParamCanvasHeight] = opts.CanvasHeight
	}
	if opts.ForceFit != nil {
		composeParams[domain.ParamForceFit] = *opts.ForceFit
	}
	if opts.BackgroundBlur != nil {
		composeParams[domain.ParamBackgroundBlur] = *opts.BackgroundBlur
	}
	if opts.BlurRadius > 0 {
		composeParams[domain.ParamBlurRadius] = opts.BlurRadius
	}
	if opts.Border != nil {
		composeParams[domain.ParamBorder] = *opts.Border
	}
	if opts.BorderWidth > 0 {
		composeParams[domain.ParamBorderWidth] = opts.BorderWidth
	}
	if opts.BorderColor != "" {
		composeParams[domain.ParamBorderColor] = opts.BorderColor
	}

	operations := []domain.OperationParams{
		{Type: domain.OpCompose, Parameters: composeParams},
	}

	if opts.Thumbnail {
		params := map[string]interface{}{}
		if opts.ThumbnailSize > 0 {
			params[domain.ParamSize] = opts.ThumbnailSize
		}
		operations = append(operations, domain.OperationParams{
			Type:       domain.OpThumbnail,
			Parameters: params,
		})
	}

	if opts.CaptionText != "" {
		params := map[string]interface{}{
			domain.ParamText: opts.CaptionText,
		}
		if opts.CaptionPos != "" {
			params[domain.ParamPosition] = opts.CaptionPos
		}
		operations = append(operations, domain.OperationParams{
			Type:       domain.OpCaption,
			Parameters: params,
		})
	}

	return operations
}

func (h *ImageHandler) handleUploadError(w http.ResponseWriter, err error, filename string) {
	switch {
	case errors.Is(err, image_uc.ErrUnsupportedFormat):
		h.logger.Warn().Str("filename", filename).Msg("unsupported file format")
		h.respondError(w, http.StatusBadRequest, "Unsupported file format", nil)
	case errors.Is(err, image_uc.ErrEmptyFile):
		h.respondError(w, http.StatusBadRequest, "File is empty", nil)
	case errors.Is(err, image_uc.ErrFileTooLarge):
		h.logger.Warn().Str("filename", filename).Msg("file too large")
		h.respondError(w, http.StatusRequestEntityTooLarge, "File too large", nil)
	case errors.Is(err, image_uc.ErrInvalidOperation):
		h.respondError(w, http.StatusBadRequest, "Invalid operation", nil)
	default:
		h.logger.Error().Err(err).Str("filename", filename).Msg("upload failed")
		h.respondError(w, http.StatusInternalServerError, "Failed to upload file", err)
	}
}

func (h *ImageHandler) handleGetImageError(w http.ResponseWriter, err error, imageID, operation string) {
	switch {
	case errors.Is(err, repo.ErrImageNotFound):
		h.logger.Info().Str("image_id", imageID).Msg("image not found")
		h.respondError(w, http.StatusNotFound, "Image not found", nil)
	case errors.Is(err, image_uc.ErrImageNotReady):
		h.respondError(w, http.StatusConflict, "Image is not processed yet", nil)
	case errors.Is(err, image_uc.ErrNoRenderedForOp):
		h.logger.Info().Str("image_id", imageID).Str("operation", operation).Msg("rendered output not found")
		h.respondError(w, http.StatusNotFound, "Rendered version not found", nil)
	case errors.Is(err, repo.ErrFileNotFound):
		h.respondError(w, http.StatusNotFound, "File not found", nil)
	default:
		h.logger.Error().Err(err).Str("image_id", imageID).Msg("failed to get image")
		h.respondError(w, http.StatusInternalServerError, "Failed to get image", err)
	}
}

func (h *ImageHandler) handleStatusError(w http.ResponseWriter, err error, imageID string) {
	switch {
	case errors.Is(err, repo.ErrImageNotFound):
		h.respondError(w, http.StatusNotFound, "Image not found", nil)
	default:
		h.logger.Error().Err(err).Str("image_id", imageID).Msg("failed to get status")
		h.respondError(w, http.StatusInternalServerError, "Failed to get status", err)
	}
}

func (h *ImageHandler) handleDeleteError(w http.ResponseWriter, err error, imageID string) {
	switch {
	case errors.Is(err, repo.ErrImageNotFound):
		h.respondError(w, http.StatusNotFound, "Image not found", nil)
	default:
		h.logger.Error().Err(err).Str("image_id", imageID).Msg("failed to delete image")
		h.respondError(w, http.StatusInternalServerError, "Failed to delete image", err)
	}
}

func (h *ImageHandler) getDownloadFilename(originalName, operation string) string {
	if operation == "" {
		operation = string(domain.OpCompose)
	}

	ext := filepath.Ext(originalName)
	name := strings.TrimSuffix(originalName, ext)
	return fmt.Sprintf("%s_%s%s", name, operation, ext)
}

func (h *ImageHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Interface("data", data).Msg("failed to encode response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *ImageHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	response := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}

	if err != nil {
		response.Details = err.Error()
	}

	h.respondJSON(w, status, response)
}

package dto

// ComposeOptions mirrors the multipart form fields controlling the
// composition. Zero values mean "use the service default".
type ComposeOptions struct {
	CanvasWidth    int    `form:"canvas_width" validate:"omitempty,min=1,max=10000"`
	CanvasHeight   int    `form:"canvas_height" validate:"omitempty,min=1,max=10000"`
	ForceFit       *bool  `form:"force_fit"`
	BackgroundBlur *bool  `form:"background_blur"`
	BlurRadius     int    `form:"blur_radius" validate:"omitempty,min=0,max=500"`
	Border         *bool  `form:"border"`
	BorderWidth    int    `form:"border_width" validate:"omitempty,min=0,max=1000"`
	BorderColor    string `form:"border_color"`

	Thumbnail     bool   `form:"thumbnail"`
	ThumbnailSize int    `form:"thumbnail_size" validate:"omitempty,min=1,max=2000"`
	CaptionText   string `form:"caption_text" validate:"omitempty,max=200"`
	CaptionPos    string `form:"caption_position" validate:"omitempty,oneof=top-left top-right top-center bottom-left bottom-right bottom-center center"`
}

type GetImageRequest struct {
	ID        string `uri:"id" binding:"required"`
	Operation string `form:"operation"`
}

type StatusRequest struct {
	ID string `uri:"id" binding:"required"`
}

type DeleteRequest struct {
	ID string `uri:"id" binding:"required"`
}

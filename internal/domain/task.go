package domain

type ComposeTask struct {
	ID           string
	ImageID      string
	OriginalPath string
	Bucket       string
	Operations   []OperationParams
	Format       ImageFormat
}

type OperationParams struct {
	Type       OperationType
	Parameters map[string]interface{}
}

type ComposeResult struct {
	ID            string
	ImageID       string
	Status        ImageStatus
	RenderedPaths map[string]string
	Error         string
}

type CaptionPosition string

const (
	CaptionTopLeft      CaptionPosition = "top-left"
	CaptionTopRight     CaptionPosition = "top-right"
	CaptionTopCenter    CaptionPosition = "top-center"
	CaptionBottomLeft   CaptionPosition = "bottom-left"
	CaptionBottomRight  CaptionPosition = "bottom-right"
	CaptionBottomCenter CaptionPosition = "bottom-center"
	CaptionCenter       CaptionPosition = "center"
)

const (
	KafkaTopicCompose = "image-compose"
	KafkaTopicResults = "image-composed"
	KafkaGroupID      = "imager-group"
)

const (
	PathPrefixOriginal = "original/"
	PathPrefixRendered = "rendered/"
)

const (
	DefaultMaxUploadSize = 32 << 20
	DefaultCanvasWidth   = 700
	DefaultCanvasHeight  = 365
	DefaultBlurRadius    = 75
	DefaultBorderWidth   = 1
	DefaultBorderColor   = "255,255,255"
	DefaultThumbnailSize = 200
	DefaultJPEGQuality   = 85
	DefaultCaptionText   = ""
)

const (
	ParamCanvasWidth    = "canvas_width"
	ParamCanvasHeight   = "canvas_height"
	ParamForceFit       = "force_fit"
	ParamBackgroundBlur = "background_blur"
	ParamBlurRadius     = "blur_radius"
	ParamBorder         = "border"
	ParamBorderWidth    = "border_width"
	ParamBorderColor    = "border_color"
	ParamSize           = "size"
	ParamText           = "text"
	ParamPosition       = "position"
	ParamOpacity        = "opacity"
	ParamFontSize       = "font_size"
	ParamFontColor      = "font_color"
)

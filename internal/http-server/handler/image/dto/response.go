package dto

import "time"

type UploadResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type StatusResponse struct {
	ID       string             `json:"id"`
	Status   string             `json:"status"`
	Rendered []RenderedResponse `json:"rendered,omitempty"`
}

type RenderedResponse struct {
	Operation string    `json:"operation"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
}

type ImageResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListResponse struct {
	Images []ImageResponse `json:"images"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

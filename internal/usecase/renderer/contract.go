package renderer

import "context"

type fileRepository interface {
	SaveRendered(ctx context.Context, imageID string, data []byte, name, contentType string) (string, error)
}

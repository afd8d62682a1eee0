package intake

import (
	"encoding/base64"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/models"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
)

var (
	ErrNotAnImage    = errors.NewSentinel("reference photo is not an image")
	ErrImageTooLarge = errors.NewSentinel("reference photo is too large")
)

// EncodeImage reads a reference photo and converts it to base64 for transport.
//
// The declared MIME type is trusted only when it is a specific image type. Otherwise the content is sniffed.
// maxBytes bounds the size of the decoded image. Read failures are returned to the caller.
func EncodeImage(r io.Reader, filename, declaredMIME string, maxBytes int64) (*models.ReferenceImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read reference image", slog.String("filename", filename))
	}
	if int64(len(data)) > maxBytes {
		return nil, errors.Wrap(ErrImageTooLarge, "read reference image",
			slog.String("filename", filename), slog.Int64("max_bytes", maxBytes))
	}

	mimeType := imageMIMEType(declaredMIME)
	if mimeType == "" {
		mimeType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, errors.Wrap(ErrNotAnImage, "detect image type",
			slog.String("filename", filename), slog.String("mime_type", mimeType))
	}

	return &models.ReferenceImage{
		Filename: filename,
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// imageMIMEType returns the media type of declared when it names a concrete image format.
func imageMIMEType(declared string) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !strings.HasPrefix(mediaType, "image/") || mediaType == "image/*" {
		return ""
	}
	return mediaType
}

package processor

import (
	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/dynimage/internal/entity"
)

var mimeTypes = map[entity.ImageFormat]string{
	entity.FormatBmp:  "image/bmp",
	entity.FormatGif:  "image/gif",
	entity.FormatJpeg: "image/jpeg",
	entity.FormatPng:  "image/x-png",
	entity.FormatTiff: "image/tiff",
}

var encoderFormats = map[entity.ImageFormat]imaging.Format{
	entity.FormatBmp:  imaging.BMP,
	entity.FormatGif:  imaging.GIF,
	entity.FormatJpeg: imaging.JPEG,
	entity.FormatPng:  imaging.PNG,
	entity.FormatTiff: imaging.TIFF,
}

// MimeType maps an output format to its content type. Original and webp
// have no entry: the former must be resolved first, the latter cannot be
// encoded.
func MimeType(f entity.ImageFormat) (string, bool) {
	m, ok := mimeTypes[f]
	return m, ok
}

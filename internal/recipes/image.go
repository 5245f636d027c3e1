package recipes

import (
	"bytes"
	"image"

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// DetectImageFormat reports the format name of data if it decodes as a
// supported raster image. Only the header is decoded, not the pixels.
func DetectImageFormat(data []byte) (string, bool) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	return format, true
}

func imageExtension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

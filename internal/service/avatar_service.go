package service

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/models"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// AvatarMaxSize is the bounding box avatars are resized into. Smaller
	// images are stored as-is; there is no upscaling.
	AvatarMaxSize = 125

	DefaultAvatarDir       = "static/profile_pics"
	DefaultMaxUploadSizeMB = 5

	jpegQuality = 85
)

// AvatarService stores profile pictures on disk under randomized filenames.
type AvatarService struct {
	dir                string
	maxUploadSizeBytes int64
}

// NewAvatarService creates an AvatarService writing into dir.
func NewAvatarService(dir string) *AvatarService {
	if dir == "" {
		dir = DefaultAvatarDir
	}
	return &AvatarService{
		dir:                dir,
		maxUploadSizeBytes: int64(DefaultMaxUploadSizeMB) * 1024 * 1024,
	}
}

// Save validates, resizes and persists an uploaded avatar, returning the
// stored filename: 16 random hex characters plus the original extension.
// GIF and WebP uploads are re-encoded and stored as .jpg.
func (s *AvatarService) Save(content []byte, originalName string) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedImageMIME(detectedType) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	resized := resizeToFit(decoded, AvatarMaxSize, AvatarMaxSize)

	ext := normalizedExtension(originalName, format)
	var encoded []byte
	switch ext {
	case ".png":
		encoded, err = encodePNG(resized)
	default:
		encoded, err = encodeJPEG(resized, jpegQuality)
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}

	filename, err := randomFilename(ext)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	if err := writeBytesToFile(filepath.Join(s.dir, filename), encoded); err != nil {
		return "", models.NewInternalError(err)
	}

	return filename, nil
}

// Remove deletes a previously stored avatar. The default placeholder is never
// deleted, and a missing file is not an error.
func (s *AvatarService) Remove(filename string) error {
	if filename == "" || filename == models.DefaultAvatar {
		return nil
	}
	// Reject anything that could escape the avatar directory.
	if filename != filepath.Base(filename) {
		return models.NewValidationError("Invalid avatar filename")
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		return models.NewInternalError(err)
	}
	return nil
}

// Path returns the on-disk path of a stored avatar.
func (s *AvatarService) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}

// resizeToFit scales src down to fit within maxWidth x maxHeight preserving
// aspect ratio. Images already inside the box are returned unchanged.
func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodePNG(img image.Image) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// normalizedExtension picks the stored extension: .jpg or .png keep their
// kind, everything else decodable collapses to .jpg.
func normalizedExtension(originalName, decodedFormat string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".jpg", ".jpeg":
		return ext
	case ".png":
		if decodedFormat == "png" {
			return ".png"
		}
	}
	return ".jpg"
}

func randomFilename(ext string) (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]) + ext, nil
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

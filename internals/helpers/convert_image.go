// file: internals/helpers/convert_image.go
package helper

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	MaxImageUploadBytes = 5 * 1024 * 1024
	PhotoMaxSide        = 512
	webpQuality         = 80
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageToWebP: decode → fit ke maxSide×maxSide (rasio dijaga) → encode WebP.
func ImageToWebP(r io.Reader, maxSide int) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxImageUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("gagal membaca gambar: %w", err)
	}
	if len(raw) > MaxImageUploadBytes {
		return nil, fmt.Errorf("ukuran gambar melebihi %dMB", MaxImageUploadBytes/1024/1024)
	}

	var img image.Image
	if isWebP(raw) {
		img, err = webp.Decode(bytes.NewReader(raw))
	} else {
		img, err = imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("format gambar tidak dikenali: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxSide || b.Dy() > maxSide {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := webp.Encode(&out, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("gagal encode webp: %w", err)
	}
	return out.Bytes(), nil
}

func isWebP(b []byte) bool {
	return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WEBP"
}

// SaveUploadedImageAsWebP: simpan upload multipart ke {baseDir}/{folder}/YYYYMMDD-uuid.webp
// dan kembalikan path relatif (dipakai sebagai *_photo_url).
func SaveUploadedImageAsWebP(baseDir, folder string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("file gambar wajib diisi")
	}
	ct := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if ct != "" && !allowedImageTypes[ct] {
		return "", fmt.Errorf("tipe file %s tidak didukung", ct)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("gagal membuka file gambar: %w", err)
	}
	defer src.Close()

	data, err := ImageToWebP(src, PhotoMaxSide)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("gagal membuat folder upload: %w", err)
	}
	name := fmt.Sprintf("%s-%s.webp", time.Now().Format("20060102"), uuid.NewString())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("gagal menyimpan gambar: %w", err)
	}
	return "/uploads/" + folder + "/" + name, nil
}

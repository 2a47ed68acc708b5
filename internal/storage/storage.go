// Package storage хранит бинарные ресурсы, извлеченные из загруженных документов.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// AssetStore сохраняет ресурс и возвращает стабильную публичную ссылку на него.
// Повторное сохранение тех же байтов под тем же именем возвращает ту же ссылку.
type AssetStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// ContentName строит имя ресурса из хеша содержимого: prefix-<sha256>.ext.
// Одинаковые байты всегда получают одно имя, поэтому параллельные записи не конфликтуют.
func ContentName(prefix string, data []byte, ext string) string {
	sum := sha256.Sum256(data)
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	return prefix + "-" + hex.EncodeToString(sum[:]) + "." + ext
}

var imageTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"emf":  "image/emf",
	"wmf":  "image/wmf",
}

// ImageContentType возвращает MIME-тип изображения по расширению; неизвестные считаются image/png
func ImageContentType(ext string) string {
	if ct, ok := imageTypes[strings.TrimPrefix(strings.ToLower(ext), ".")]; ok {
		return ct
	}
	return "image/png"
}

// ExtensionForContentType возвращает расширение для MIME-типа изображения или пустую строку
func ExtensionForContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return "jpg"
	case "image/tiff":
		return "tif"
	case "image/x-emf":
		return "emf"
	case "image/x-wmf":
		return "wmf"
	}
	for ext, t := range imageTypes {
		if t == ct && ext != "jpeg" && ext != "tiff" {
			return ext
		}
	}
	return ""
}

// ImageExtension нормализует расширение изображения; неизвестные расширения становятся png
func ImageExtension(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	switch ext {
	case "jpeg":
		return "jpg"
	case "tiff":
		return "tif"
	}
	if _, ok := imageTypes[ext]; ok {
		return ext
	}
	return "png"
}

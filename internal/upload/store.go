package upload

import (
	"fmt"
	"io"
	"math/rand"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/menottiRicardo/blazestack/internal/models"
)

// allowedMimeTypes - список разрешенных типов изображений, проверяется по
// заявленному Content-Type части, а не по расширению файла
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Store сохраняет загруженные изображения в плоский каталог на локальном диске
type Store struct {
	dir string
}

// NewStore создает хранилище загрузок, каталог создается при первом обращении
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir возвращает путь к каталогу загрузок
func (s *Store) Dir() string {
	return s.dir
}

// Save валидирует тип файла и записывает его под сгенерированным именем.
// При отклонении по типу запись не выполняется, при ошибке записи
// недописанный файл удаляется.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	contentType := fh.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			contentType = mt
		} else {
			contentType = strings.TrimSpace(contentType[:i])
		}
	}

	if !allowedMimeTypes[strings.ToLower(contentType)] {
		return "", models.NewValidationError("image", "Only image files are allowed (JPEG, PNG, GIF, WebP)")
	}

	filename := generateFilename(fh.Filename)
	fullPath := filepath.Join(s.dir, filename)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return filename, nil
}

// generateFilename генерирует уникальное имя файла: метка времени в
// миллисекундах плюс случайный суффикс, расширение оригинала сохраняется
func generateFilename(original string) string {
	ext := filepath.Ext(original)
	return fmt.Sprintf("incident-%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}

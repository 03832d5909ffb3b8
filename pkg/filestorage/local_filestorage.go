package filestorage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrOutsideBase - путь указывает за пределы корневой директории хранилища.
var ErrOutsideBase = errors.New("путь вне директории хранилища")

// Storage хранит загруженные файлы (исходные xlsx импорта сотрудников).
type Storage interface {
	Save(file io.Reader, originalFileName string, prefix string) (filePath string, err error)
	Delete(filePath string) error
}

type LocalFileStorage struct {
	basePath string
	now      func() time.Time
}

func NewLocalFileStorage(basePath string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", basePath, err)
	}
	return &LocalFileStorage{basePath: basePath, now: time.Now}, nil
}

// Save кладёт файл в <base>/<prefix>/YYYY/MM/DD и возвращает путь относительно base.
func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	now := s.now()
	ext := strings.ToLower(filepath.Ext(originalFileName))
	uniqueFileName := fmt.Sprintf("%s-%s%s", now.Format("2006-01-02"), uuid.New().String(), ext)

	relDir := filepath.Join(prefix, now.Format("2006/01/02"))
	fullDirPath, err := s.resolve(relDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(fullDirPath, uniqueFileName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(relDir, uniqueFileName)), nil
}

// Delete удаляет файл по относительному пути. Отсутствующий файл не ошибка.
func (s *LocalFileStorage) Delete(filePath string) error {
	fullPath, err := s.resolve(filepath.FromSlash(filePath))
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalFileStorage) resolve(rel string) (string, error) {
	base := filepath.Clean(s.basePath)
	full := filepath.Join(base, rel)
	if full != base && !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", ErrOutsideBase
	}
	return full, nil
}

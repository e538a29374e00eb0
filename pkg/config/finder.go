package config

import (
	"os"
	"path/filepath"
)

// EnvConfigPath — переменная окружения с явным путём к config.yaml.
const EnvConfigPath = "SEEDER_CONFIG"

// PathFinder определяет стратегию поиска config.yaml.
//
// Позволяет подменить поиск в тестах.
type PathFinder interface {
	FindConfigPath() (string, bool)
}

// DefaultPathFinder реализует стандартную стратегию поиска config.yaml.
//
// Порядок поиска:
// 1. Переменная окружения SEEDER_CONFIG
// 2. Текущая директория (./config.yaml)
// 3. Директория бинарника
// 4. Родительская директория (для запуска из cmd/)
//
// Утилита запускается без флагов, поэтому отсутствие конфига — не ошибка:
// второе значение false означает "работаем на дефолтах".
type DefaultPathFinder struct{}

// FindConfigPath находит путь к config.yaml.
func (f *DefaultPathFinder) FindConfigPath() (string, bool) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return resolveAbsPath(p), true
	}

	candidates := []string{"config.yaml"}
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), "config.yaml"))
	}
	candidates = append(candidates,
		filepath.Join("..", "config.yaml"),
		filepath.Join("..", "..", "config.yaml"),
	)

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return resolveAbsPath(p), true
		}
	}

	return "", false
}

// LoadOrDefault ищет конфиг через finder и загружает его.
// Если файл не найден — возвращает Default() и пустой путь.
func LoadOrDefault(finder PathFinder) (*AppConfig, string, error) {
	path, ok := finder.FindConfigPath()
	if !ok {
		return Default(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func resolveAbsPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// Package buildinfo описывает метаданные сборки, которые публикуются рядом с
// развёрнутым приложением и отдаются через /api/meta.
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"staffhub/pkg/config"
)

// Значения подставляются через -ldflags "-X staffhub/pkg/buildinfo.Version=...".
var (
	Version   = ""
	BuildTime = ""
)

type Info struct {
	Version    string    `json:"version"`
	BuildTime  time.Time `json:"buildTime"`
	BackendURL string    `json:"backendUrl"`
}

// From собирает метаданные: ldflags важнее конфигурации.
func From(cfg *config.Config, now time.Time) Info {
	info := Info{
		Version:    cfg.Build.Version,
		BackendURL: cfg.Backend.URL,
		BuildTime:  now.UTC().Truncate(time.Second),
	}
	if Version != "" {
		info.Version = Version
	}
	raw := cfg.Build.BuildTime
	if BuildTime != "" {
		raw = BuildTime
	}
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			info.BuildTime = t.UTC()
		}
	}
	return info
}

func Write(path string, info Info) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("не удалось записать %s: %w", path, err)
	}
	return nil
}

func Read(path string) (Info, error) {
	var info Info
	data, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("некорректный файл метаданных %s: %w", path, err)
	}
	return info, nil
}

// Package backend - единственная точка доступа к размещённому сервису данных и
// аутентификации. Клиент создаётся один раз при старте и передаётся сервисам.
package backend

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"staffhub/pkg/config"
)

type Client struct {
	Data *DataAPI
	Auth *AuthAPI
	URL  string
}

func New(ctx context.Context, cfg config.BackendConfig, logger *zap.Logger) (*Client, error) {
	data, err := ConnectData(ctx, cfg.DatabaseURL, logger.Named("data"))
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	if cfg.URL == "" || cfg.AnonKey == "" {
		logger.Warn("BACKEND_URL или BACKEND_ANON_KEY не заданы, аутентификация недоступна")
	}

	return &Client{
		Data: data,
		Auth: NewAuthAPI(cfg.URL, cfg.AnonKey, cfg.ServiceKey, httpClient, logger),
		URL:  cfg.URL,
	}, nil
}

func (c *Client) Close() {
	c.Data.Close()
}

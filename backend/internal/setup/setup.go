package setup

import (
	"github.com/drafthook/drafthook/backend/internal/handler"
	"github.com/drafthook/drafthook/backend/internal/service"
	"github.com/drafthook/drafthook/backend/internal/storage/pg"
	"github.com/drafthook/drafthook/shared/config"
	"github.com/drafthook/drafthook/shared/jwt"
)

// Dependencies holds all initialized dependencies.
type Dependencies struct {
	Storage *pg.Storage
	Handler *handler.Handler
	Jwt     jwt.JwtService
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.Public.Server.JwtTTL)
	history := service.NewHistory(storage)
	h := handler.New(history, storage)

	return &Dependencies{
		Storage: storage,
		Handler: h,
		Jwt:     jwtService,
	}, nil
}

package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-without-cqrs/config"
	"github.com/oksasatya/go-ddd-without-cqrs/internal/application"
	"github.com/oksasatya/go-ddd-without-cqrs/internal/domain/repository"
	"github.com/oksasatya/go-ddd-without-cqrs/internal/infrastructure/postgres"
)

// Container holds the components built at startup. Everything is passed in
// explicitly; there is no package-level state.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     postgres.DB

	Clubs       repository.ClubRepository
	ClubService *application.ClubService
}

func New(cfg *config.Config, logger *logrus.Logger, db postgres.DB) *Container {
	clubs := postgres.NewClubRepository(db)
	return &Container{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Clubs:       clubs,
		ClubService: application.NewClubService(clubs, logger),
	}
}

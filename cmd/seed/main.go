package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-without-cqrs/config"
	"github.com/oksasatya/go-ddd-without-cqrs/internal/application"
	"github.com/oksasatya/go-ddd-without-cqrs/internal/container"
	"github.com/oksasatya/go-ddd-without-cqrs/internal/domain/entity"
	pginfra "github.com/oksasatya/go-ddd-without-cqrs/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-without-cqrs/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolConfig{
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer pool.Close()

	c := container.New(cfg, logger, pool)

	students := []*entity.Student{
		entity.NewStudent("s1", "Aiko"),
		entity.NewStudent("s2", "Budi"),
		entity.NewStudent("s3", "Chandra"),
		entity.NewStudent("s4", "Dewi"),
	}
	for _, s := range students {
		if _, err := pool.Exec(ctx, `
			INSERT INTO students (id, name)
			VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		`, string(s.ID), s.Name); err != nil {
			log.Fatalf("failed to seed student %s: %v", s.ID, err)
		}
	}
	fmt.Printf("seeded %d students\n", len(students))

	club, err := c.ClubService.RegisterClub(ctx, application.RegisterClubInput{
		Name:       "Chess",
		StudentIDs: []entity.StudentID{"s1", "s2", "s3"},
	})
	if err != nil {
		log.Fatalf("failed to register club: %v", err)
	}
	fmt.Printf("registered club: id=%s name=%s members=%v\n", club.ID, club.Name, club.Members())

	if _, err := c.ClubService.JoinClub(ctx, club.ID, "s4"); err != nil {
		log.Fatalf("join failed: %v", err)
	}
	if _, err := c.ClubService.LeaveClub(ctx, club.ID, "s1"); err != nil {
		log.Fatalf("leave failed: %v", err)
	}

	// Save reassigns the roster that was stored before each call, so the
	// persisted roster still reads s1, s2, s3 here.
	stored, err := c.ClubService.GetClub(ctx, club.ID)
	if err != nil {
		log.Fatalf("reload failed: %v", err)
	}
	fmt.Printf("stored roster after join/leave: %v\n", stored.Members())
}

package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-without-cqrs/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-without-cqrs/internal/domain/repository"
	"github.com/oksasatya/go-ddd-without-cqrs/pkg/helpers"
	"github.com/oksasatya/go-ddd-without-cqrs/pkg/validation"
)

var ErrInvalidInput = errors.New("invalid input")

// ClubService loads a club, applies one membership change and saves it.
type ClubService struct {
	Repo   repo.ClubRepository
	Logger *logrus.Logger
}

func NewClubService(repo repo.ClubRepository, logger *logrus.Logger) *ClubService {
	return &ClubService{Repo: repo, Logger: logger}
}

type RegisterClubInput struct {
	Name       string             `name:"name" validate:"required,max=100"`
	StudentIDs []entity.StudentID `name:"student_ids" validate:"max=20,unique,dive,required"`
}

// RegisterClub persists a brand-new club under a generated id.
func (s *ClubService) RegisterClub(ctx context.Context, in RegisterClubInput) (*entity.Club, error) {
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	club := entity.NewClub(entity.NewClubID(), in.Name, in.StudentIDs...)
	if err := s.Repo.Create(ctx, club); err != nil {
		helpers.LogError(s.Logger, "create club failed", err, logrus.Fields{"club_id": club.ID})
		return nil, err
	}
	helpers.LogInfo(s.Logger, "club registered", logrus.Fields{
		"club_id": club.ID,
		"members": club.NumMembers(),
	})
	return club, nil
}

func (s *ClubService) GetClub(ctx context.Context, id entity.ClubID) (*entity.Club, error) {
	return s.Repo.Get(ctx, id)
}

func (s *ClubService) JoinClub(ctx context.Context, clubID entity.ClubID, studentID entity.StudentID) (*entity.Club, error) {
	return s.update(ctx, "join", clubID, studentID, (*entity.Club).Join)
}

func (s *ClubService) LeaveClub(ctx context.Context, clubID entity.ClubID, studentID entity.StudentID) (*entity.Club, error) {
	return s.update(ctx, "leave", clubID, studentID, (*entity.Club).Leave)
}

func (s *ClubService) update(
	ctx context.Context,
	op string,
	clubID entity.ClubID,
	studentID entity.StudentID,
	apply func(*entity.Club, entity.StudentID) error,
) (*entity.Club, error) {
	fields := logrus.Fields{"op": op, "club_id": clubID, "student_id": studentID}

	club, err := s.Repo.Get(ctx, clubID)
	if err != nil {
		helpers.LogError(s.Logger, "load club failed", err, fields)
		return nil, err
	}
	if err := apply(club, studentID); err != nil {
		if s.Logger != nil {
			s.Logger.WithFields(fields).WithError(err).Warn("membership change rejected")
		}
		return nil, err
	}
	if err := s.Repo.Save(ctx, club); err != nil {
		helpers.LogError(s.Logger, "save club failed", err, fields)
		return nil, err
	}
	fields["members"] = club.NumMembers()
	helpers.LogInfo(s.Logger, "membership updated", fields)
	return club, nil
}

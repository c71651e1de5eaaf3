package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
}

func NewProfileService(profileRepo repository.ProfileRepository, userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

// Get returns the user's onboarding profile, or an empty one if the wizard
// has not been started.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.UserProfile{
				UserID:  userID,
				Answers: datatypes.JSON([]byte("{}")),
			}, nil
		}
		return nil, err
	}
	return profile, nil
}

type SaveProfileInput struct {
	UserID         uuid.UUID
	Answers        json.RawMessage
	CompletedSteps int
}

// Save upserts the wizard answers. Completing the final step marks the
// account as onboarded.
func (s *ProfileService) Save(ctx context.Context, input SaveProfileInput) (*domain.UserProfile, error) {
	answers := input.Answers
	if len(answers) == 0 {
		answers = json.RawMessage("{}")
	}

	now := time.Now()
	profile := &domain.UserProfile{
		ID:             uuid.New(),
		UserID:         input.UserID,
		Answers:        datatypes.JSON(answers),
		CompletedSteps: input.CompletedSteps,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	if input.CompletedSteps >= domain.OnboardingStepCount {
		user, err := s.userRepo.GetByID(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		if !user.OnboardingComplete {
			user.OnboardingComplete = true
			user.UpdatedAt = now
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	}

	return s.profileRepo.GetByUserID(ctx, input.UserID)
}

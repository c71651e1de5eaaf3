package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OnboardingStepCount is the number of steps in the onboarding wizard.
const OnboardingStepCount = 5

// UserProfile holds the structured answers collected by the onboarding
// wizard. Answers are stored as a single JSON document since the step
// catalog changes frequently and is owned by the frontend.
type UserProfile struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID         uuid.UUID      `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Answers        datatypes.JSON `json:"answers"`
	CompletedSteps int            `json:"completedSteps" gorm:"not null;default:0"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yanchenliu/moodlog-backend/pkg/db"
	"github.com/yanchenliu/moodlog-backend/pkg/db/models"
	"github.com/yanchenliu/moodlog-backend/pkg/enums"
	pkgerrors "github.com/yanchenliu/moodlog-backend/pkg/errors"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
	"gorm.io/gorm"
)

// Service defines the behavior needed by the profile controller.
type Service interface {
	// Get returns the caller's profile, or (nil, nil) when none has been
	// saved yet.
	Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	// Upsert creates or overwrites the caller's profile. The boolean reports
	// whether a new row was created.
	Upsert(ctx context.Context, userID uuid.UUID, req UpsertProfileRequest) (*ProfileDTO, bool, error)
}

type profileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	Update(ctx context.Context, profile *models.UserProfile) error
}

// SeedNotifier announces that a user saved their first profile so sample
// content can be provisioned out of band.
type SeedNotifier interface {
	NotifyProfileCreated(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     profileRepository
	notifier SeedNotifier
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build a profile service.
type ServiceParams struct {
	Repo         profileRepository
	SeedNotifier SeedNotifier
	Logger       *logger.Logger
}

// NewService constructs a profile service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:     params.Repo,
		notifier: params.SeedNotifier,
		logg:     params.Logger,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	dto := FromModel(profile)
	return &dto, nil
}

func (s *service) Upsert(ctx context.Context, userID uuid.UUID, req UpsertProfileRequest) (*ProfileDTO, bool, error) {
	mbti, err := enums.ParseMBTIType(strings.ToUpper(strings.TrimSpace(req.MBTI)))
	if err != nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "invalid mbti type")
	}

	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}

	if existing == nil {
		profile := &models.UserProfile{
			UserID:         userID,
			MBTI:           mbti,
			Occupation:     strings.TrimSpace(req.Occupation),
			Personality:    strings.TrimSpace(req.Personality),
			CurrentWork:    strings.TrimSpace(req.CurrentWork),
			AdditionalInfo: req.AdditionalInfo,
		}
		if err := s.repo.Create(ctx, profile); err != nil {
			// A concurrent first save can beat us to the unique user_id
			// index. Fall through to the update path in that case.
			if !db.IsUniqueViolation(err, "") {
				return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
			}
			existing, err = s.repo.FindByUserID(ctx, userID)
			if err != nil {
				return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload profile")
			}
		} else {
			s.notifyCreated(ctx, userID)
			dto := FromModel(profile)
			return &dto, true, nil
		}
	}

	existing.MBTI = mbti
	existing.Occupation = strings.TrimSpace(req.Occupation)
	existing.Personality = strings.TrimSpace(req.Personality)
	existing.CurrentWork = strings.TrimSpace(req.CurrentWork)
	existing.AdditionalInfo = req.AdditionalInfo
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	dto := FromModel(existing)
	return &dto, false, nil
}

// notifyCreated is best effort. Seeding has its own one-shot guard, so a
// dropped event only means the user sees an empty history until their first
// record.
func (s *service) notifyCreated(ctx context.Context, userID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyProfileCreated(ctx, userID); err != nil {
		ctx = s.logg.WithUserID(ctx, userID.String())
		s.logg.Error(ctx, "failed to publish profile created event", err)
	}
}

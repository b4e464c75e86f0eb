package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sydscene/sydscene/internal/database"
	"github.com/sydscene/sydscene/pkg/mapper"
	"github.com/sydscene/sydscene/pkg/models"
	"github.com/sydscene/sydscene/pkg/schemas"
	"gorm.io/gorm"
)

var ErrInvalidCapture = errors.New("invalid email capture")

type EmailCaptureService struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewEmailCaptureService(db *gorm.DB) *EmailCaptureService {
	return &EmailCaptureService{db: db, validate: validator.New()}
}

func (s *EmailCaptureService) Capture(ctx context.Context, in *schemas.EmailCaptureIn) (*schemas.EmailCaptureOut, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCapture, err)
	}

	var event models.Event
	err := s.db.WithContext(ctx).Select("id").Where("id = ?", in.EventID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	capture := models.EmailCapture{
		Email:      in.Email,
		Consent:    in.Consent,
		EventID:    in.EventID,
		CapturedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&capture).Error; err != nil {
		return nil, err
	}

	out := mapper.ToEmailCaptureOut(capture)
	return &out, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/repositories"
	"github.com/traldis/court-queue/storage"
)

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// MediaService manages the post-event photo gallery backed by object
// storage. When no uploader is configured the gallery endpoints stay up for
// reads and refuse writes.
type MediaService interface {
	UploadEventPhoto(ctx context.Context, eventID string, caption *string, contentType string, body io.Reader) (*models.EventPhoto, error)
	ListEventPhotos(ctx context.Context, eventID string) ([]models.EventPhoto, error)
	DeleteEventPhoto(ctx context.Context, photoID string) error
}

type mediaService struct {
	photos   repositories.PhotoRepository
	events   repositories.EventRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewMediaService(photos repositories.PhotoRepository, events repositories.EventRepository, uploader storage.FileUploader, logger *slog.Logger) MediaService {
	return &mediaService{
		photos:   photos,
		events:   events,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *mediaService) UploadEventPhoto(ctx context.Context, eventID string, caption *string, contentType string, body io.Reader) (*models.EventPhoto, error) {
	if s.uploader == nil || s.photos == nil {
		return nil, ErrMediaNotConfigured
	}
	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedPhotoType
	}

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	photo := &models.EventPhoto{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Caption:   caption,
		CreatedAt: time.Now(),
	}
	photo.StorageKey = fmt.Sprintf("events/%s/photos/%s%s", eventID, photo.ID, ext)

	result, err := s.uploader.Upload(ctx, photo.StorageKey, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}
	photo.URL = result.Location

	if err := s.photos.Insert(ctx, photo); err != nil {
		// Best effort: do not leave an orphaned object behind.
		if delErr := s.uploader.Delete(ctx, photo.StorageKey); delErr != nil {
			s.logger.Error("failed to clean up photo object after insert failure",
				slog.String("key", photo.StorageKey), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return photo, nil
}

func (s *mediaService) ListEventPhotos(ctx context.Context, eventID string) ([]models.EventPhoto, error) {
	if s.photos == nil {
		return []models.EventPhoto{}, nil
	}
	photos, err := s.photos.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if s.uploader != nil {
		for i := range photos {
			photos[i].URL = s.uploader.GetPublicURL(photos[i].StorageKey)
		}
	}
	if photos == nil {
		photos = []models.EventPhoto{}
	}
	return photos, nil
}

func (s *mediaService) DeleteEventPhoto(ctx context.Context, photoID string) error {
	if s.photos == nil {
		return ErrMediaNotConfigured
	}
	photo, err := s.photos.Delete(ctx, photoID)
	if err != nil {
		if errors.Is(err, repositories.ErrPhotoNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	if s.uploader != nil {
		if err := s.uploader.Delete(ctx, photo.StorageKey); err != nil {
			s.logger.Error("failed to delete photo object",
				slog.String("key", photo.StorageKey), slog.Any("error", err))
		}
	}
	return nil
}

package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pet3d-backend/internal/database"
	"pet3d-backend/internal/models"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type ImageService struct {
	db       *database.DatabaseClient
	store    AssetStore
	maxBytes int64
	now      func() time.Time
}

func NewImageService(db *database.DatabaseClient, store AssetStore, maxBytes int64) *ImageService {
	return &ImageService{db: db, store: store, maxBytes: maxBytes, now: time.Now}
}

type UploadImageInput struct {
	FileName string
	MimeType string
	Data     []byte
}

// Upload stores a pet photograph and records it for the owner.
func (s *ImageService) Upload(ctx context.Context, ownerID uuid.UUID, in UploadImageInput) (*models.PetImage, error) {
	if len(in.Data) == 0 {
		return nil, invalidInput("image is empty")
	}
	if s.maxBytes > 0 && int64(len(in.Data)) > s.maxBytes {
		return nil, invalidInput("image exceeds %d bytes", s.maxBytes)
	}

	// The stored type always comes from the bytes; a declared type must agree.
	mimeType := http.DetectContentType(in.Data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, invalidInput("file content is not a supported image (detected %q)", mimeType)
	}
	if declared := declaredContentType(in.MimeType); declared != "" && declared != mimeType {
		return nil, invalidInput("declared content type %q does not match file content %q", declared, mimeType)
	}

	fileName := sanitizeFileName(in.FileName)
	key := fmt.Sprintf("pet-images/%s/%s-%s", ownerID, uuid.NewString(), fileName)

	url, err := s.store.Put(ctx, key, in.Data, mimeType)
	if err != nil {
		return nil, internalError("store image", err)
	}

	img := &models.PetImage{
		UserID:       ownerID,
		OriginalURL:  url,
		ThumbnailURL: sql.NullString{String: url, Valid: true},
		FileName:     fileName,
		FileSize:     sql.NullInt64{Int64: int64(len(in.Data)), Valid: true},
		MimeType:     mimeType,
		StorageKey:   key,
		CreatedAt:    s.now().UTC(),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(in.Data)); err == nil {
		img.Width = sql.NullInt64{Int64: int64(cfg.Width), Valid: true}
		img.Height = sql.NullInt64{Int64: int64(cfg.Height), Valid: true}
	}

	if err := s.db.CreatePetImage(ctx, img); err != nil {
		s.deleteBlob(ctx, key)
		return nil, internalError("create pet image", err)
	}

	log.Ctx(ctx).Info().Str("image_id", img.ID.String()).Str("user_id", ownerID.String()).Msg("pet image uploaded")
	return img, nil
}

func (s *ImageService) List(ctx context.Context, ownerID uuid.UUID) ([]models.PetImage, error) {
	images, err := s.db.ListPetImages(ctx, ownerID)
	if err != nil {
		return nil, internalError("list pet images", err)
	}
	return images, nil
}

func (s *ImageService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.PetImage, error) {
	img, err := s.db.GetPetImage(ctx, ownerID, id)
	if err != nil {
		return nil, dbError("pet image", err)
	}
	return img, nil
}

// Delete removes an image that no model was generated from. The blob is
// removed best-effort after the row is gone.
func (s *ImageService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	img, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	n, err := s.db.CountModelsForImage(ctx, img.ID)
	if err != nil {
		return internalError("count models", err)
	}
	if n > 0 {
		return invalidState("image is used by %d model(s)", n)
	}

	if err := s.db.DeletePetImage(ctx, ownerID, id); err != nil {
		return dbError("pet image", err)
	}
	s.deleteBlob(ctx, img.StorageKey)
	return nil
}

func (s *ImageService) deleteBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete blob")
	}
}

// declaredContentType normalizes a client-supplied type. Generic or missing
// types return "".
func declaredContentType(raw string) string {
	t, _, _ := strings.Cut(raw, ";")
	t = strings.ToLower(strings.TrimSpace(t))
	switch t {
	case "", "application/octet-stream":
		return ""
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	}
	return t
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "image"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

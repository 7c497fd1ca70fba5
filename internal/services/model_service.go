package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"pet3d-backend/internal/database"
	"pet3d-backend/internal/hunyuan"
	"pet3d-backend/internal/lock"
	"pet3d-backend/internal/metrics"
	"pet3d-backend/internal/models"
	"pet3d-backend/internal/storage"
)

const glbContentType = "model/gltf-binary"

// ModelService drives 3D models from submission to a terminal status.
type ModelService struct {
	db       *database.DatabaseClient
	provider GenerationProvider
	store    AssetStore
	locker   lock.Locker
	group    singleflight.Group
	now      func() time.Time

	refreshTimeout time.Duration
}

func NewModelService(db *database.DatabaseClient, provider GenerationProvider, store AssetStore, locker lock.Locker) *ModelService {
	return &ModelService{
		db:             db,
		provider:       provider,
		store:          store,
		locker:         locker,
		now:            time.Now,
		refreshTimeout: 3 * time.Minute,
	}
}

// Submit starts generation for one of the owner's images. No row is written
// unless the provider accepted the job.
func (s *ModelService) Submit(ctx context.Context, ownerID, imageID uuid.UUID) (*models.Model3D, error) {
	img, err := s.db.GetPetImage(ctx, ownerID, imageID)
	if err != nil {
		return nil, dbError("pet image", err)
	}

	jobID, err := s.provider.SubmitJob(ctx, img.OriginalURL)
	if err != nil {
		return nil, providerError("hunyuan", "submit", err)
	}

	m := &models.Model3D{
		UserID:     ownerID,
		PetImageID: img.ID,
		JobID:      jobID,
		Status:     models.ModelStatusProcessing,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.db.CreateModel(ctx, m); err != nil {
		return nil, internalError("create model", err)
	}

	metrics.ModelTransitions.WithLabelValues(string(models.ModelStatusProcessing)).Inc()
	log.Ctx(ctx).Info().
		Str("model_id", m.ID.String()).
		Str("job_id", jobID).
		Msg("3d generation job submitted")
	return m, nil
}

func (s *ModelService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Model3D, error) {
	m, err := s.db.GetModel(ctx, ownerID, id)
	if err != nil {
		return nil, dbError("model", err)
	}
	return m, nil
}

func (s *ModelService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Model3D, error) {
	list, err := s.db.ListModels(ctx, ownerID)
	if err != nil {
		return nil, internalError("list models", err)
	}
	return list, nil
}

// Delete removes a model that has never been ordered.
func (s *ModelService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	m, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	n, err := s.db.CountOrdersForModel(ctx, m.ID)
	if err != nil {
		return internalError("count orders", err)
	}
	if n > 0 {
		return invalidState("model is referenced by %d order(s)", n)
	}

	if err := s.db.DeleteModel(ctx, ownerID, id); err != nil {
		return dbError("model", err)
	}
	if m.StorageKey.Valid {
		if err := s.store.Delete(ctx, m.StorageKey.String); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("key", m.StorageKey.String).Msg("failed to delete model asset")
		}
	}
	return nil
}

// CheckStatus consults the provider for a processing model and applies the
// result. Completed and failed models are returned as stored without any
// provider call. Provider errors leave the row untouched.
func (s *ModelService) CheckStatus(ctx context.Context, ownerID, id uuid.UUID) (*models.Model3D, error) {
	m, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if m.Status != models.ModelStatusProcessing {
		return m, nil
	}

	// Concurrent polls of the same model in this process share one refresh.
	v, err, _ := s.group.Do(id.String(), func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()
		return s.refresh(refreshCtx, ownerID, id)
	})
	if err != nil {
		return nil, err
	}
	out := *v.(*models.Model3D)
	return &out, nil
}

func (s *ModelService) refresh(ctx context.Context, ownerID, id uuid.UUID) (*models.Model3D, error) {
	release, err := s.locker.Lock(ctx, "model:"+id.String())
	if err != nil {
		return nil, internalError("lock model", err)
	}
	defer release()

	m, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if m.Status != models.ModelStatusProcessing {
		return m, nil
	}

	res, err := s.provider.QueryJob(ctx, m.JobID)
	if err != nil {
		return nil, providerError("hunyuan", "query", err)
	}

	logger := log.Ctx(ctx).With().Str("model_id", id.String()).Str("job_id", m.JobID).Logger()

	switch res.Status {
	case hunyuan.StatusQueued, hunyuan.StatusRunning:
		return m, nil

	case hunyuan.StatusFailed:
		msg := res.ErrorMessage
		if msg == "" {
			msg = "Generation failed"
		}
		ok, err := s.db.FailModel(ctx, id, msg)
		if err != nil {
			return nil, internalError("fail model", err)
		}
		if ok {
			metrics.ModelTransitions.WithLabelValues(string(models.ModelStatusFailed)).Inc()
			logger.Info().Str("reason", msg).Msg("3d model generation failed")
		}
		return s.Get(ctx, ownerID, id)

	case hunyuan.StatusDone:
		return s.complete(ctx, m, res)
	}
	return nil, providerError("hunyuan", "query", fmt.Errorf("unexpected job status %q", res.Status))
}

// complete re-hosts the generated asset and marks the model completed.
func (s *ModelService) complete(ctx context.Context, m *models.Model3D, res *hunyuan.JobResult) (*models.Model3D, error) {
	if res.AssetURL == "" {
		return nil, providerError("hunyuan", "query", errors.New("job finished without a GLB asset"))
	}

	data, _, err := s.provider.DownloadAsset(ctx, res.AssetURL)
	if err != nil {
		return nil, providerError("hunyuan", "download", err)
	}

	key := fmt.Sprintf("models/%s/%s.glb", m.UserID, uuid.NewString())
	glbURL, err := s.store.Put(ctx, key, data, glbContentType)
	if err != nil {
		return nil, internalError("store model asset", err)
	}

	done := database.ModelCompletion{
		GLBURL:      glbURL,
		PreviewURL:  s.rehostPreview(ctx, m.UserID, res.PreviewURL),
		StorageKey:  key,
		CompletedAt: s.now().UTC(),
	}
	ok, err := s.db.CompleteModel(ctx, m.ID, done)
	if err != nil {
		s.discard(ctx, key)
		return nil, internalError("complete model", err)
	}
	if !ok {
		// Another instance finished the transition first.
		s.discard(ctx, key)
	} else {
		metrics.ModelTransitions.WithLabelValues(string(models.ModelStatusCompleted)).Inc()
		log.Ctx(ctx).Info().
			Str("model_id", m.ID.String()).
			Str("glb_url", glbURL).
			Msg("3d model completed")
	}
	return s.Get(ctx, m.UserID, m.ID)
}

// rehostPreview copies the preview image into the asset store. On failure the
// provider URL is kept.
func (s *ModelService) rehostPreview(ctx context.Context, ownerID uuid.UUID, previewURL string) string {
	if previewURL == "" {
		return ""
	}
	data, contentType, err := s.provider.DownloadAsset(ctx, previewURL)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to download preview image")
		return previewURL
	}
	if contentType == "" {
		contentType = "image/png"
	}
	key := fmt.Sprintf("models/%s/%s-preview%s", ownerID, uuid.NewString(), storage.ExtensionFromContentType(contentType))
	url, err := s.store.Put(ctx, key, data, contentType)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to store preview image")
		return previewURL
	}
	return url
}

func (s *ModelService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to discard asset")
	}
}

package modelstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agrimaint/internal/errs"
	"agrimaint/internal/infrastructure/persistence/sqlite/model"
	"agrimaint/internal/ports"
)

// SQLiteStore keeps trained model parameters in the model_artifacts table.
type SQLiteStore struct {
	db *gorm.DB
}

var _ ports.ModelStore = (*SQLiteStore)(nil)

func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, name string) (string, bool, error) {
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", false, errs.Wrap(err, "check context")
	}

	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return "", false, errors.New("model name is required")
	}

	var row model.ModelArtifact
	if err := s.db.WithContext(ctx).Where("name = ?", trimmedName).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query model artifact")
	}

	return row.ParamsJSON, true, nil
}

func (s *SQLiteStore) TrainedAt(ctx context.Context, name string) (string, bool, error) {
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", false, errs.Wrap(err, "check context")
	}

	var row model.ModelArtifact
	if err := s.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query model artifact trained_at")
	}
	return row.TrainedAt, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, name string, paramsJSON string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return errors.New("model name is required")
	}
	if strings.TrimSpace(paramsJSON) == "" {
		return errors.New("model params are required")
	}

	row := model.ModelArtifact{
		Name:       trimmedName,
		ParamsJSON: paramsJSON,
		TrainedAt:  time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"params_json": row.ParamsJSON,
			"trained_at":  row.TrainedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert model artifact")
	}

	return nil
}

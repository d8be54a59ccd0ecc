package modelstore

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"agrimaint/internal/infrastructure/persistence/sqlite/model"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "models.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(&model.ModelArtifact{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestPutGetRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "failure-classifier", `{"weights":[1,2]}`); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	params, ok, err := store.Get(ctx, "failure-classifier")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want stored artifact")
	}
	if params != `{"weights":[1,2]}` {
		t.Fatalf("params = %q, want stored payload", params)
	}

	trainedAt, ok, err := store.TrainedAt(ctx, "failure-classifier")
	if err != nil {
		t.Fatalf("TrainedAt() error = %v", err)
	}
	if !ok || trainedAt == "" {
		t.Fatalf("TrainedAt() = %q/%v, want a timestamp", trainedAt, ok)
	}
}

func TestGetMissingArtifact(t *testing.T) {
	store := setupStore(t)

	params, ok, err := store.Get(context.Background(), "rul-regressor")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok || params != "" {
		t.Fatalf("Get(missing) = %q/%v, want empty and ok=false", params, ok)
	}
}

func TestPutOverwritesByName(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "anomaly-detector", `{"v":1}`); err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	if err := store.Put(ctx, "anomaly-detector", `{"v":2}`); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	params, ok, err := store.Get(ctx, "anomaly-detector")
	if err != nil || !ok {
		t.Fatalf("Get() = %v/%v", err, ok)
	}
	if params != `{"v":2}` {
		t.Fatalf("params = %q, want the newer payload", params)
	}
}

func TestPutRejectsEmptyInput(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "", `{"v":1}`); err == nil {
		t.Fatal("Put() with empty name succeeded, want error")
	}
	if err := store.Put(ctx, "anomaly-detector", "  "); err == nil {
		t.Fatal("Put() with empty params succeeded, want error")
	}
}

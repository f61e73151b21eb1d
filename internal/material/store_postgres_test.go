package material_test

import (
	"context"
	"testing"

	"github.com/p-n-ai/materialbank/internal/material"
	"github.com/p-n-ai/materialbank/internal/platform/database/dbtest"
)

func TestNewPostgresStore_NilPool(t *testing.T) {
	if _, err := material.NewPostgresStore(nil); err == nil {
		t.Fatal("NewPostgresStore(nil) should error")
	}
}

func TestPostgresStore(t *testing.T) {
	pool := dbtest.NewPool(t)

	runStoreTests(t, func(t *testing.T) material.Store {
		if _, err := pool.Exec(context.Background(), `TRUNCATE materials CASCADE`); err != nil {
			t.Fatalf("truncate materials: %v", err)
		}
		store, err := material.NewPostgresStore(pool)
		if err != nil {
			t.Fatalf("NewPostgresStore() error = %v", err)
		}
		return store
	})
}

func TestPostgresStore_DocumentsRoundTrip(t *testing.T) {
	pool := dbtest.NewPool(t)
	store, err := material.NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	ctx := context.Background()

	m := sampleMaterial("電流と磁界", "理科", "中学2年生")
	m.Guide = &material.LessonGuide{
		LessonNumber: "第1時",
		LessonPlan: material.LessonPlan{
			Phases:               []material.LessonPhase{{Name: "導入", Duration: 7}},
			TotalDuration:        45,
			AnticipatedResponses: map[string][]string{"なぜ?": {"磁界ができるから"}},
		},
	}
	created, err := store.Create(ctx, m)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Details != nil {
		t.Error("Details should stay nil when not set")
	}
	if got.Guide == nil || got.Guide.LessonPlan.Phases[0].Name != "導入" {
		t.Fatalf("Guide = %+v", got.Guide)
	}
	if got.Guide.LessonPlan.AnticipatedResponses["なぜ?"][0] != "磁界ができるから" {
		t.Error("anticipated responses should survive the JSONB round trip")
	}
}

package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/store"
	"github.com/orato-ai/orato/internal/store/sqlite"
	"github.com/orato-ai/orato/pkg/types"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "orato.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleReport(jobID string, score int) *analysis.Report {
	return &analysis.Report{
		JobID:  jobID,
		Status: analysis.StatusDone,
		OverallScore: types.OverallScore{
			Score: score, Label: types.OverallGood, Confidence: 0.7,
		},
		Metrics: map[string]types.MetricResult{
			"pace": {Score: types.ScoreOf(score), Label: "optimal", Confidence: 0.8},
		},
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	t.Parallel()
	st := openStore(t)
	ctx := context.Background()

	if err := st.SaveReport(ctx, sampleReport("job-1", 82)); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetReport(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.JobID != "job-1" || got.OverallScore.Score != 82 {
		t.Errorf("got %+v", got)
	}
	if got.Metrics["pace"].Label != "optimal" {
		t.Error("nested metric document did not round-trip")
	}
}

func TestStore_SaveUpserts(t *testing.T) {
	t.Parallel()
	st := openStore(t)
	ctx := context.Background()

	if err := st.SaveReport(ctx, sampleReport("job-1", 50)); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveReport(ctx, sampleReport("job-1", 90)); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetReport(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.OverallScore.Score != 90 {
		t.Errorf("score = %d, want the upserted 90", got.OverallScore.Score)
	}

	list, err := st.ListReports(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("upsert created %d rows, want 1", len(list))
	}
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()
	st := openStore(t)
	_, err := st.GetReport(context.Background(), "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()
	st := openStore(t)
	ctx := context.Background()

	if err := st.SaveReport(ctx, sampleReport("job-1", 70)); err != nil {
		t.Fatal(err)
	}
	if err := st.DeleteReport(ctx, "job-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.GetReport(ctx, "job-1"); !errors.Is(err, store.ErrNotFound) {
		t.Error("report still present after delete")
	}
	// Deleting a missing report is not an error.
	if err := st.DeleteReport(ctx, "job-1"); err != nil {
		t.Errorf("double delete: %v", err)
	}
}

func TestStore_ListLimitAndOrder(t *testing.T) {
	t.Parallel()
	st := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := st.SaveReport(ctx, sampleReport(id, 60)); err != nil {
			t.Fatal(err)
		}
	}

	list, err := st.ListReports(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("limit 2 returned %d rows", len(list))
	}
	for _, s := range list {
		if s.Status != analysis.StatusDone || s.OverallScore != 60 {
			t.Errorf("summary = %+v", s)
		}
	}
}

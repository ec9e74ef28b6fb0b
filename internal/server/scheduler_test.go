package server

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/whiskertrack/whiskertrack/internal/store"
)

func TestRefreshCutoff(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC)
	cases := []struct {
		name string
		cron string
		want time.Time
	}{
		{"daily", "@daily", now.Add(-24 * time.Hour)},
		{"empty defaults to daily", "", now.Add(-24 * time.Hour)},
		{"hourly", "@hourly", now.Add(-time.Hour)},
		{"six hour expression", "0 */6 * * *", now.Add(-6 * time.Hour)},
		{"invalid falls back to daily", "not a cron", now.Add(-24 * time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := refreshCutoff(tc.cron, now); !got.Equal(tc.want) {
				t.Fatalf("refreshCutoff(%q) = %v, want %v", tc.cron, got, tc.want)
			}
		})
	}
}

func TestSchedulerTickRefreshesStaleArchives(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	old := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)FROM disease_archives WHERE generated=TRUE AND updated_at < \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "pet_id", "title", "content", "generated", "created_at", "updated_at"}).
			AddRow("arch-1", "pet-1", "t1", "stale", true, old, old).
			AddRow("arch-2", "pet-2", "t2", "stale", true, old, old))

	// arch-1: has events, gets regenerated
	mock.ExpectQuery(`(?s)FROM abnormal_events WHERE pet_id=\$1\s+ORDER BY recorded_at`).
		WithArgs("pet-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "pet_id", "recorded_at", "symptoms", "note", "created_at"}).
			AddRow("ev-1", "pet-1", old, "{vomiting}", "", old))
	mock.ExpectQuery(`(?s)FROM pets WHERE id=\$1`).
		WithArgs("pet-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "species", "breed", "birth_date", "created_at", "updated_at"}).
			AddRow("pet-1", "user-1", "Mochi", "cat", "", nil, old, old))
	mock.ExpectExec(`UPDATE disease_archives SET content=\$2, updated_at=NOW\(\) WHERE id=\$1 AND generated=TRUE`).
		WithArgs("arch-1", "fresh narrative").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// arch-2: no events, left alone
	mock.ExpectQuery(`(?s)FROM abnormal_events WHERE pet_id=\$1\s+ORDER BY recorded_at`).
		WithArgs("pet-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "pet_id", "recorded_at", "symptoms", "note", "created_at"}))

	llm := &stubLLM{archiveContent: "fresh narrative"}
	s := &Scheduler{Store: &store.Store{DB: db}, LLM: llm, RefreshCron: "@daily"}
	s.tick()

	if len(llm.archivePets) != 1 || llm.archivePets[0] != "pet-1" {
		t.Fatalf("provider regenerated for %v", llm.archivePets)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSchedulerTickKeepsContentOnProviderFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	old := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)FROM disease_archives WHERE generated=TRUE AND updated_at < \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "pet_id", "title", "content", "generated", "created_at", "updated_at"}).
			AddRow("arch-1", "pet-1", "t1", "stale", true, old, old))
	mock.ExpectQuery(`(?s)FROM abnormal_events WHERE pet_id=\$1\s+ORDER BY recorded_at`).
		WithArgs("pet-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "pet_id", "recorded_at", "symptoms", "note", "created_at"}).
			AddRow("ev-1", "pet-1", old, "{vomiting}", "", old))
	mock.ExpectQuery(`(?s)FROM pets WHERE id=\$1`).
		WithArgs("pet-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "species", "breed", "birth_date", "created_at", "updated_at"}).
			AddRow("pet-1", "user-1", "Mochi", "cat", "", nil, old, old))
	// no UPDATE expected: the failed generation must not touch the row

	s := &Scheduler{Store: &store.Store{DB: db}, LLM: &stubLLM{err: errProviderDown}, RefreshCron: "@daily"}
	s.tick()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/whiskertrack/whiskertrack/models"
)

func TestGetPetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	mock.ExpectQuery(`(?s)FROM pets WHERE id=\$1 AND owner_id=\$2`).
		WithArgs("p1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "species", "breed", "birth_date", "created_at", "updated_at"}))

	_, err = st.GetPet(context.Background(), "p1", "u1")
	if !errors.Is(err, models.ErrPetNotFound) {
		t.Fatalf("got %v, want ErrPetNotFound", err)
	}
}

func TestListEventsByPetScansArraysAndDates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	recorded := time.Date(2025, 10, 5, 23, 30, 0, 0, time.UTC)
	created := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)FROM abnormal_events WHERE pet_id=\$1\s+ORDER BY recorded_at`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "pet_id", "recorded_at", "symptoms", "note", "created_at"}).
			AddRow("e1", "p1", recorded, `{vomiting,"soft stool"}`, "after dinner", created))

	events, err := st.ListEventsByPet(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ListEventsByPet: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	ev := events[0]
	if !ev.RecordedAt.Equal(recorded) {
		t.Fatalf("recorded at = %v", ev.RecordedAt.Time)
	}
	if len(ev.Symptoms) != 2 || ev.Symptoms[0] != "vomiting" || ev.Symptoms[1] != "soft stool" {
		t.Fatalf("symptoms = %v", ev.Symptoms)
	}
	if ev.Note != "after dinner" {
		t.Fatalf("note = %q", ev.Note)
	}
}

func TestUpdateArchiveContentClearsGeneratedFlag(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	mock.ExpectExec(`UPDATE disease_archives SET title=\$2, content=\$3, generated=FALSE`).
		WithArgs("a1", "new title", "new content").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.UpdateArchiveContent(context.Background(), "a1", "new title", "new content"); err != nil {
		t.Fatalf("UpdateArchiveContent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteArchiveNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	mock.ExpectExec(`DELETE FROM disease_archives WHERE id=\$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = st.DeleteArchive(context.Background(), "missing")
	if !errors.Is(err, models.ErrArchiveNotFound) {
		t.Fatalf("got %v, want ErrArchiveNotFound", err)
	}
}

func TestListGeneratedArchivesOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	st := &Store{DB: db}

	cutoff := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	old := cutoff.Add(-48 * time.Hour)
	mock.ExpectQuery(`(?s)FROM disease_archives WHERE generated=TRUE AND updated_at < \$1`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"id", "pet_id", "title", "content", "generated", "created_at", "updated_at"}).
			AddRow("a1", "p1", "t", "c", true, old, old))

	archives, err := st.ListGeneratedArchivesOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("ListGeneratedArchivesOlderThan: %v", err)
	}
	if len(archives) != 1 || archives[0].ID != "a1" || !archives[0].Generated {
		t.Fatalf("archives = %+v", archives)
	}
}

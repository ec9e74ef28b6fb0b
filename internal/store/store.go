package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/whiskertrack/whiskertrack/models"
)

type Store struct {
	DB *sql.DB
}

// NewWithDSN opens a postgres connection and verifies it.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{DB: db}, nil
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, NOW())`,
		uuid.NewString(), email, passwordHash)
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (id string, passwordHash string, err error) {
	err = s.DB.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email=$1`, email).Scan(&id, &passwordHash)
	return id, passwordHash, err
}

// ---- pets ----

func (s *Store) CreatePet(ctx context.Context, ownerID, name, species, breed string, birthDate *time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO pets (id, owner_id, name, species, breed, birth_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`,
		id, ownerID, name, species, breed, birthDate)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetPet(ctx context.Context, id, ownerID string) (models.Pet, error) {
	var p models.Pet
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, owner_id, name, species, breed, birth_date, created_at, updated_at
		 FROM pets WHERE id=$1 AND owner_id=$2`, id, ownerID).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.Breed, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pet{}, models.ErrPetNotFound
	}
	return p, err
}

// GetPetByID loads a pet with no ownership check, for internal jobs.
func (s *Store) GetPetByID(ctx context.Context, id string) (models.Pet, error) {
	var p models.Pet
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, owner_id, name, species, breed, birth_date, created_at, updated_at
		 FROM pets WHERE id=$1`, id).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.Breed, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pet{}, models.ErrPetNotFound
	}
	return p, err
}

func (s *Store) ListPets(ctx context.Context, ownerID string) ([]models.Pet, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, owner_id, name, species, breed, birth_date, created_at, updated_at
		 FROM pets WHERE owner_id=$1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Pet{}
	for rows.Next() {
		var p models.Pet
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.Breed, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdatePet(ctx context.Context, id, ownerID, name, species, breed string, birthDate *time.Time) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE pets SET name=$3, species=$4, breed=$5, birth_date=$6, updated_at=NOW()
		 WHERE id=$1 AND owner_id=$2`,
		id, ownerID, name, species, breed, birthDate)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrPetNotFound)
}

func (s *Store) DeletePet(ctx context.Context, id, ownerID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM pets WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrPetNotFound)
}

// ---- abnormal events ----

func (s *Store) CreateEvent(ctx context.Context, petID string, recordedAt time.Time, symptoms []string, note string) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO abnormal_events (id, pet_id, recorded_at, symptoms, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		id, petID, recordedAt, pq.Array(symptoms), note)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListEventsByPet(ctx context.Context, petID string) ([]models.AbnormalEvent, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, pet_id, recorded_at, symptoms, note, created_at
		 FROM abnormal_events WHERE pet_id=$1 ORDER BY recorded_at`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListEventsBetween returns the pet's events with recorded_at in [from, to).
func (s *Store) ListEventsBetween(ctx context.Context, petID string, from, to time.Time) ([]models.AbnormalEvent, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, pet_id, recorded_at, symptoms, note, created_at
		 FROM abnormal_events WHERE pet_id=$1 AND recorded_at >= $2 AND recorded_at < $3
		 ORDER BY recorded_at`, petID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) DeleteEvent(ctx context.Context, id, petID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM abnormal_events WHERE id=$1 AND pet_id=$2`, id, petID)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrEventNotFound)
}

func scanEvents(rows *sql.Rows) ([]models.AbnormalEvent, error) {
	out := []models.AbnormalEvent{}
	for rows.Next() {
		var ev models.AbnormalEvent
		var recordedAt time.Time
		var symptoms pq.StringArray
		if err := rows.Scan(&ev.ID, &ev.PetID, &recordedAt, &symptoms, &ev.Note, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.RecordedAt = models.EventDate{Time: recordedAt}
		ev.Symptoms = models.SymptomList(symptoms)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ---- disease archives ----

func (s *Store) CreateArchive(ctx context.Context, petID, title, content string, generated bool) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO disease_archives (id, pet_id, title, content, generated, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
		id, petID, title, content, generated)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetArchive(ctx context.Context, id string) (models.DiseaseArchive, error) {
	var a models.DiseaseArchive
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, pet_id, title, content, generated, created_at, updated_at
		 FROM disease_archives WHERE id=$1`, id).
		Scan(&a.ID, &a.PetID, &a.Title, &a.Content, &a.Generated, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DiseaseArchive{}, models.ErrArchiveNotFound
	}
	return a, err
}

func (s *Store) ListArchivesByPet(ctx context.Context, petID string) ([]models.DiseaseArchive, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, pet_id, title, content, generated, created_at, updated_at
		 FROM disease_archives WHERE pet_id=$1 ORDER BY updated_at DESC`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.DiseaseArchive{}
	for rows.Next() {
		var a models.DiseaseArchive
		if err := rows.Scan(&a.ID, &a.PetID, &a.Title, &a.Content, &a.Generated, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateArchiveContent saves a user edit; edited archives stop counting as
// generated so the scheduler leaves them alone.
func (s *Store) UpdateArchiveContent(ctx context.Context, id, title, content string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE disease_archives SET title=$2, content=$3, generated=FALSE, updated_at=NOW() WHERE id=$1`,
		id, title, content)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrArchiveNotFound)
}

// RefreshArchiveContent replaces generated content, keeping the generated flag.
func (s *Store) RefreshArchiveContent(ctx context.Context, id, content string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE disease_archives SET content=$2, updated_at=NOW() WHERE id=$1 AND generated=TRUE`,
		id, content)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrArchiveNotFound)
}

func (s *Store) DeleteArchive(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM disease_archives WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrArchiveNotFound)
}

// ListGeneratedArchivesOlderThan feeds the refresh scheduler.
func (s *Store) ListGeneratedArchivesOlderThan(ctx context.Context, cutoff time.Time) ([]models.DiseaseArchive, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, pet_id, title, content, generated, created_at, updated_at
		 FROM disease_archives WHERE generated=TRUE AND updated_at < $1 ORDER BY updated_at`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.DiseaseArchive{}
	for rows.Next() {
		var a models.DiseaseArchive
		if err := rows.Scan(&a.ID, &a.PetID, &a.Title, &a.Content, &a.Generated, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ArchiveOwner resolves the owning user for an archive via its pet.
func (s *Store) ArchiveOwner(ctx context.Context, archiveID string) (string, error) {
	var ownerID string
	err := s.DB.QueryRowContext(ctx,
		`SELECT p.owner_id FROM disease_archives a JOIN pets p ON p.id = a.pet_id WHERE a.id=$1`,
		archiveID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrArchiveNotFound
	}
	return ownerID, err
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

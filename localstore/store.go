package localstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-experience-repository/experience"
	"github.com/goliatone/go-experience-repository/logging"
)

// DefaultDSN keeps the cache in a process-local shared in-memory database.
const DefaultDSN = "file:experiences?mode=memory&cache=shared"

// Store is the Local Cache Store contract.
type Store interface {
	GetRecommended(ctx context.Context) ([]experience.Experience, error)
	GetAll(ctx context.Context) ([]experience.Experience, error)
	// GetByID reports a missing record with found == false, not an error.
	GetByID(ctx context.Context, id string) (experience.Experience, bool, error)
	Upsert(ctx context.Context, records []experience.Experience) error
	// UpdateLikeStatus is a logged no-op when the record is absent.
	UpdateLikeStatus(ctx context.Context, id string, isLiked bool, likesCount int) error
	Clear(ctx context.Context) error
}

// BunStore implements Store on SQLite through bun.
type BunStore struct {
	db     *bun.DB
	logger logging.Logger
	now    func() time.Time
	// writeMu serializes writes so city resolution sees committed batches.
	writeMu sync.Mutex
}

var _ Store = (*BunStore)(nil)

// Open connects to the SQLite database at dsn and creates the schema.
func Open(ctx context.Context, dsn string, logger logging.Logger) (*BunStore, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = DefaultDSN
	}

	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, newError(KindInitFailed, "open", err)
	}
	// A single connection keeps in-memory databases alive and writes serialized.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(0)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, newError(KindInitFailed, "ping", err)
	}
	if _, err := sqldb.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		sqldb.Close()
		return nil, newError(KindInitFailed, "pragma", err)
	}

	store := NewBunStore(bun.NewDB(sqldb, sqlitedialect.New()), logger)
	if err := store.CreateSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// NewBunStore wraps an existing bun database. Call CreateSchema before use
// when the tables may not exist.
func NewBunStore(db *bun.DB, logger logging.Logger) *BunStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BunStore{
		db:     db,
		logger: logger.WithFields(logging.Fields{"component": "localstore"}),
		now:    time.Now,
	}
}

// CreateSchema creates the cities and experiences tables if missing.
func (s *BunStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*CityModel)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return newError(KindInitFailed, "create cities", err)
	}

	if _, err := s.db.NewCreateTable().
		Model((*ExperienceModel)(nil)).
		IfNotExists().
		ForeignKey(`("city_id") REFERENCES "cities" ("id") ON DELETE SET NULL`).
		Exec(ctx); err != nil {
		return newError(KindInitFailed, "create experiences", err)
	}

	if _, err := s.db.NewCreateIndex().
		Model((*ExperienceModel)(nil)).
		Index("experiences_recommended_idx").
		Column("is_recommended").
		IfNotExists().
		Exec(ctx); err != nil {
		return newError(KindInitFailed, "create index", err)
	}
	return nil
}

// DB exposes the underlying bun handle.
func (s *BunStore) DB() *bun.DB {
	return s.db
}

// Close releases the database.
func (s *BunStore) Close() error {
	return s.db.Close()
}

func (s *BunStore) selectExperiences(models *[]ExperienceModel) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(models).
		Relation("City").
		OrderExpr("e.rowid ASC")
}

// GetRecommended returns every cached record flagged as recommended.
func (s *BunStore) GetRecommended(ctx context.Context) ([]experience.Experience, error) {
	var models []ExperienceModel
	if err := s.selectExperiences(&models).
		Where("e.is_recommended = ?", true).
		Scan(ctx); err != nil {
		return nil, newError(KindFetchFailed, "get recommended", err)
	}
	s.logger.Debug("fetched recommended experiences from cache", logging.Fields{"count": len(models)})
	return toEntities(models), nil
}

// GetAll returns every cached record in first-cached order.
func (s *BunStore) GetAll(ctx context.Context) ([]experience.Experience, error) {
	var models []ExperienceModel
	if err := s.selectExperiences(&models).Scan(ctx); err != nil {
		return nil, newError(KindFetchFailed, "get all", err)
	}
	s.logger.Debug("fetched experiences from cache", logging.Fields{"count": len(models)})
	return toEntities(models), nil
}

// GetByID returns the cached record with id.
func (s *BunStore) GetByID(ctx context.Context, id string) (experience.Experience, bool, error) {
	model := new(ExperienceModel)
	err := s.db.NewSelect().
		Model(model).
		Relation("City").
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return experience.Experience{}, false, nil
	}
	if err != nil {
		return experience.Experience{}, false, newError(KindFetchFailed, "get by id", err)
	}
	return model.ToEntity(), true, nil
}

// Upsert inserts or overwrites records in one transaction. Cities are
// resolved once per id: first from the batch, then from the store, and
// created only when neither has it.
func (s *BunStore) Upsert(ctx context.Context, records []experience.Experience) error {
	if len(records) == 0 {
		return nil
	}
	for _, record := range records {
		if strings.TrimSpace(record.ID) == "" {
			return newError(KindInvalidData, "upsert", errors.New("experience id is empty"))
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cachedAt := s.now().UTC()
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		resolved := make(map[int]*CityModel)
		for _, record := range records {
			model := newExperienceModel(record, cachedAt)
			if record.City != nil {
				city, err := resolveCity(ctx, tx, resolved, *record.City)
				if err != nil {
					return err
				}
				model.CityID = &city.ID
			}
			if err := upsertExperience(ctx, tx, model); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var persistenceErr *PersistenceError
		if errors.As(err, &persistenceErr) {
			return persistenceErr
		}
		return newError(KindSaveFailed, "upsert", err)
	}

	s.logger.Debug("cached experiences", logging.Fields{"count": len(records)})
	return nil
}

func resolveCity(ctx context.Context, tx bun.Tx, resolved map[int]*CityModel, city experience.City) (*CityModel, error) {
	if model, ok := resolved[city.ID]; ok {
		return model, nil
	}

	model := new(CityModel)
	err := tx.NewSelect().Model(model).Where("c.id = ?", city.ID).Limit(1).Scan(ctx)
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		model = &CityModel{ID: city.ID, Name: city.Name}
		if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
			return nil, newError(KindInsertFailed, "insert city", err)
		}
	default:
		return nil, newError(KindFetchFailed, "find city", err)
	}

	resolved[city.ID] = model
	return model, nil
}

func upsertExperience(ctx context.Context, tx bun.Tx, model *ExperienceModel) error {
	_, err := tx.NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("cover_photo = EXCLUDED.cover_photo").
		Set("description = EXCLUDED.description").
		Set("views_count = EXCLUDED.views_count").
		Set("likes_count = EXCLUDED.likes_count").
		Set("is_recommended = EXCLUDED.is_recommended").
		Set("has_video = EXCLUDED.has_video").
		Set("city_id = EXCLUDED.city_id").
		Set("tour_html = EXCLUDED.tour_html").
		Set("is_liked = EXCLUDED.is_liked").
		Set("cached_at = EXCLUDED.cached_at").
		Exec(ctx)
	if err != nil {
		return newError(KindInsertFailed, "upsert experience", err)
	}
	return nil
}

// UpdateLikeStatus overwrites the like fields of a cached record.
func (s *BunStore) UpdateLikeStatus(ctx context.Context, id string, isLiked bool, likesCount int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.NewUpdate().
		Model((*ExperienceModel)(nil)).
		Set("is_liked = ?", isLiked).
		Set("likes_count = ?", likesCount).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return newError(KindSaveFailed, "update like status", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return newError(KindSaveFailed, "update like status", err)
	}
	if affected == 0 {
		s.logger.Warn("experience not found for like update", logging.Fields{"experience_id": id})
	}
	return nil
}

// Clear deletes every experience and city.
func (s *BunStore) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*ExperienceModel)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model((*CityModel)(nil)).Where("1 = 1").Exec(ctx)
		return err
	})
	if err != nil {
		return newError(KindDeleteFailed, "clear", err)
	}
	s.logger.Info("cleared experience cache", nil)
	return nil
}

// Cities lists stored cities ordered by id.
func (s *BunStore) Cities(ctx context.Context) ([]experience.City, error) {
	var models []CityModel
	if err := s.db.NewSelect().Model(&models).Order("c.id ASC").Scan(ctx); err != nil {
		return nil, newError(KindFetchFailed, "list cities", err)
	}
	out := make([]experience.City, 0, len(models))
	for _, m := range models {
		out = append(out, experience.City{ID: m.ID, Name: m.Name})
	}
	return out, nil
}

// Count returns the number of cached experiences.
func (s *BunStore) Count(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*ExperienceModel)(nil)).Count(ctx)
	if err != nil {
		return 0, newError(KindFetchFailed, "count", err)
	}
	return n, nil
}

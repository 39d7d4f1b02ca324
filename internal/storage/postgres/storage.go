// Package postgres provides the durable store backed by PostgreSQL via gorm.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/storage"
)

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// New opens a PostgreSQL connection, verifies it and migrates the schema
func New(cfg Config) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	s := &Storage{db: db, sqlDB: sqlDB}
	if cfg.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return s, nil
}

// Migrate creates or updates the tables
func (s *Storage) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&participantRow{},
		&purchaseRow{},
		&pendingRow{},
		&trophyRow{},
	)
}

// Close closes the database pool
func (s *Storage) Close() error {
	return s.sqlDB.Close()
}

// Ping checks the database connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Participant operations

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	var rows []participantRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*model.Participant, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	var row participantRow
	if err := s.db.WithContext(ctx).First(&row, int64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	row := participantToRow(p)
	db := s.db.WithContext(ctx)

	if row.ID == 0 {
		if err := db.Create(row).Error; err != nil {
			return err
		}
		p.ID = model.ParticipantID(row.ID)
		return nil
	}

	if err := db.Save(row).Error; err != nil {
		return err
	}
	// Explicit ids bypass the serial sequence
	return db.Exec(`SELECT setval(pg_get_serial_sequence('participants', 'id'), GREATEST((SELECT MAX(id) FROM participants), 1))`).Error
}

func (s *Storage) UpdateKnownIdentifiers(ctx context.Context, id model.ParticipantID, appIDs []model.AppID) error {
	result := s.db.WithContext(ctx).
		Model(&participantRow{ID: int64(id)}).
		Select("KnownAppIDs").
		Updates(&participantRow{KnownAppIDs: appIDsToInts(appIDs)})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrParticipantNotFound
	}
	return nil
}

// Purchase operations

func (s *Storage) ListPurchases(ctx context.Context, filter storage.PurchaseFilter) ([]*model.Purchase, error) {
	q := s.db.WithContext(ctx).Order("id")
	if filter.ParticipantID != nil {
		q = q.Where("participant_id = ?", int64(*filter.ParticipantID))
	}
	if filter.WithAppIDOnly {
		q = q.Where("game_appid IS NOT NULL")
	}

	var rows []purchaseRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*model.Purchase, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (s *Storage) InsertPurchase(ctx context.Context, p *model.Purchase) error {
	row := purchaseToRow(p)
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	p.ID = model.PurchaseID(row.ID)
	return nil
}

func (s *Storage) DeletePurchase(ctx context.Context, id model.PurchaseID) error {
	result := s.db.WithContext(ctx).Delete(&purchaseRow{}, int64(id))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrPurchaseNotFound
	}
	return nil
}

func (s *Storage) UpdatePurchasePrice(ctx context.Context, id model.PurchaseID, price float64) error {
	result := s.db.WithContext(ctx).
		Model(&purchaseRow{}).
		Where("id = ?", int64(id)).
		Update("price", price)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrPurchaseNotFound
	}
	return nil
}

// Pending purchase operations

func (s *Storage) ListPendingPurchases(ctx context.Context) ([]*model.PendingPurchase, error) {
	var rows []pendingRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*model.PendingPurchase, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (s *Storage) GetPendingPurchase(ctx context.Context, id model.PendingPurchaseID) (*model.PendingPurchase, error) {
	var row pendingRow
	if err := s.db.WithContext(ctx).First(&row, int64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPendingNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) InsertPendingPurchases(ctx context.Context, items []*model.PendingPurchase) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]*pendingRow, len(items))
	for i, item := range items {
		rows[i] = pendingToRow(item)
		rows[i].ID = 0
	}

	if err := s.db.WithContext(ctx).Create(rows).Error; err != nil {
		return err
	}

	for i, row := range rows {
		items[i].ID = model.PendingPurchaseID(row.ID)
	}
	return nil
}

func (s *Storage) DeletePendingPurchase(ctx context.Context, id model.PendingPurchaseID) error {
	result := s.db.WithContext(ctx).Delete(&pendingRow{}, int64(id))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrPendingNotFound
	}
	return nil
}

// Trophy operations

func (s *Storage) InsertTrophy(ctx context.Context, t *model.Trophy) error {
	row := trophyToRow(t)
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ErrDuplicateTrophy
		}
		return err
	}
	t.ID = model.TrophyID(row.ID)
	return nil
}

func (s *Storage) ListTrophies(ctx context.Context) ([]*model.Trophy, error) {
	var rows []trophyRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*model.Trophy, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

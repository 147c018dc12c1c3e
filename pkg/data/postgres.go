package data

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spencer-p/hightides/pkg/tides"
)

// TideRow is the gorm model for a stored tide event.
type TideRow struct {
	gorm.Model
	Location  string    `gorm:"uniqueIndex:idx_location_time;not null"`
	Time      time.Time `gorm:"uniqueIndex:idx_location_time;not null"`
	High      bool
	Height    float64
	FetchedAt time.Time
}

func (TideRow) TableName() string { return "tides" }

// PostgresConfig holds connection settings.
type PostgresConfig struct {
	Host     string `default:"localhost"`
	Port     string `default:"5432"`
	User     string `default:"postgres"`
	Password string
	Database string `default:"hightides"`
	TimeZone string `default:"America/New_York"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host, c.User, c.Password, c.Database, c.Port, c.TimeZone)
}

// Postgres stores tides through gorm.
type Postgres struct {
	db *gorm.DB
}

var _ tides.Store = (*Postgres)(nil)

// OpenPostgres connects and migrates the schema.
func OpenPostgres(cfg PostgresConfig) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&TideRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save upserts every tide event of r.
func (p *Postgres) Save(ctx context.Context, r tides.Result) error {
	recs := records(r)
	if len(recs) == 0 {
		return nil
	}
	rows := make([]TideRow, len(recs))
	for i, t := range recs {
		rows[i] = TideRow{
			Location:  t.Location,
			Time:      t.Time,
			High:      t.High,
			Height:    t.Height,
			FetchedAt: t.FetchedAt,
		}
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location"}, {Name: "time"}},
		DoUpdates: clause.AssignmentColumns([]string{"high", "height", "fetched_at", "updated_at"}),
	}).Create(&rows).Error
}

// HighTides returns the stored high tides of location in [from, to).
func (p *Postgres) HighTides(ctx context.Context, location string, from, to time.Time) ([]Tide, error) {
	var rows []TideRow
	err := p.db.WithContext(ctx).
		Where("location = ? AND high AND time >= ? AND time < ?", location, from, to).
		Order("time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Tide, len(rows))
	for i, r := range rows {
		out[i] = Tide{Location: r.Location, Time: r.Time, High: r.High, Height: r.Height, FetchedAt: r.FetchedAt}
	}
	return out, nil
}

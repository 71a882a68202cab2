//go:build !js && !wasm
// +build !js,!wasm

package index

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/enginerr"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
)

// gormTrack is the `tracks` relation from §6's persisted-state layout.
type gormTrack struct {
	ID         string `gorm:"primaryKey"`
	Title      string
	Artist     string
	SourcePath string
	DurationS  float64
	NumPeaks   int
	NumHashes  int
}

// gormPosting is the `postings` relation, with a secondary index on Hash
// for fast lookup by query.
type gormPosting struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Hash      uint32 `gorm:"index:idx_hash"`
	TrackID   string `gorm:"index:idx_track"`
	AnchorIdx uint32
}

// SQLiteIndex is the relational shape of the hash index (§4.D, "recommended
// when persistence is required"), adapting the teacher's GORM + glebarez/sqlite
// storage layer from its Song/Fingerprint tables to the spec's tracks/postings
// schema.
type SQLiteIndex struct {
	db *gorm.DB
}

// NewSQLiteIndex opens (or creates) a SQLite-backed index at path and runs
// migrations.
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite index: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&gormTrack{}, &gormPosting{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &SQLiteIndex{db: db}, nil
}

// AddTrack commits a track and its postings inside one transaction, so
// readers never see a track with a partial posting set. Postings are
// inserted in batches of 1000.
func (s *SQLiteIndex) AddTrack(track Track, landmarks []fingerprint.Landmark) error {
	var existing gormTrack
	if err := s.db.Where("id = ?", track.ID).First(&existing).Error; err == nil {
		return enginerr.ErrDuplicateTrack
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking for existing track: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		row := gormTrack{
			ID:         track.ID,
			Title:      track.Title,
			Artist:     track.Artist,
			SourcePath: track.SourcePath,
			DurationS:  track.DurationS,
			NumPeaks:   track.NumPeaks,
			NumHashes:  len(landmarks),
		}
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return enginerr.ErrDuplicateTrack
			}
			return fmt.Errorf("inserting track: %w", err)
		}

		postings := make([]gormPosting, 0, len(landmarks))
		for _, lm := range landmarks {
			postings = append(postings, gormPosting{
				Hash:      uint32(lm.Hash),
				TrackID:   track.ID,
				AnchorIdx: uint32(lm.AnchorIdx),
			})
			if len(postings) >= 1000 {
				if err := tx.CreateInBatches(postings, 1000).Error; err != nil {
					return fmt.Errorf("batch insert postings: %w", err)
				}
				postings = postings[:0]
			}
		}
		if len(postings) > 0 {
			if err := tx.CreateInBatches(postings, 1000).Error; err != nil {
				return fmt.Errorf("batch insert last postings: %w", err)
			}
		}
		return nil
	})
}

// Forget deletes a track and all its postings in one transaction.
// Idempotent: an unknown track_id is not an error.
func (s *SQLiteIndex) Forget(trackID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", trackID).Delete(&gormPosting{}).Error; err != nil {
			return fmt.Errorf("deleting postings: %w", err)
		}
		if err := tx.Where("id = ?", trackID).Delete(&gormTrack{}).Error; err != nil {
			return fmt.Errorf("deleting track: %w", err)
		}
		return nil
	})
}

// Lookup returns postings for a hash, uncapped.
func (s *SQLiteIndex) Lookup(hash fingerprint.LandmarkHash) ([]Posting, error) {
	return s.LookupN(hash, 0)
}

// LookupN returns postings for a hash, capped at maxN (maxN<=0 means unlimited).
func (s *SQLiteIndex) LookupN(hash fingerprint.LandmarkHash, maxN int) ([]Posting, error) {
	q := s.db.Where("hash = ?", uint32(hash))
	if maxN > 0 {
		q = q.Limit(maxN)
	}
	var rows []gormPosting
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	out := make([]Posting, len(rows))
	for i, r := range rows {
		out[i] = Posting{TrackID: r.TrackID, AnchorIdx: int(r.AnchorIdx)}
	}
	return out, nil
}

// GetTrack retrieves a track's metadata.
func (s *SQLiteIndex) GetTrack(trackID string) (Track, error) {
	var row gormTrack
	if err := s.db.Where("id = ?", trackID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Track{}, enginerr.ErrUnknownTrack
		}
		return Track{}, fmt.Errorf("querying track: %w", err)
	}
	return toTrack(row), nil
}

// ListTracks returns all tracks, ordered by id for a stable snapshot.
func (s *SQLiteIndex) ListTracks() ([]Track, error) {
	var rows []gormTrack
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}
	out := make([]Track, len(rows))
	for i, r := range rows {
		out[i] = toTrack(r)
	}
	return out, nil
}

// Stats reports current occupancy.
func (s *SQLiteIndex) Stats() (Stats, error) {
	var numTracks, numPostings, numHashes int64
	if err := s.db.Model(&gormTrack{}).Count(&numTracks).Error; err != nil {
		return Stats{}, fmt.Errorf("counting tracks: %w", err)
	}
	if err := s.db.Model(&gormPosting{}).Count(&numPostings).Error; err != nil {
		return Stats{}, fmt.Errorf("counting postings: %w", err)
	}
	if err := s.db.Model(&gormPosting{}).Distinct("hash").Count(&numHashes).Error; err != nil {
		return Stats{}, fmt.Errorf("counting unique hashes: %w", err)
	}
	return Stats{
		NumTracks:       int(numTracks),
		NumPostings:     int(numPostings),
		NumUniqueHashes: int(numHashes),
	}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteIndex) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toTrack(r gormTrack) Track {
	return Track{
		ID:         r.ID,
		Title:      r.Title,
		Artist:     r.Artist,
		SourcePath: r.SourcePath,
		DurationS:  r.DurationS,
		NumPeaks:   r.NumPeaks,
		NumHashes:  r.NumHashes,
	}
}

package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sensorlab/doorwatch/database"
	"github.com/sensorlab/doorwatch/database/model"
	"github.com/sensorlab/doorwatch/web/entity"
)

// StaleThreshold is the window after which the newest snapshot no longer
// counts as proof of life. Absence of fresh data is the only offline
// indicator; the collector never probes the device itself.
const StaleThreshold = 30 * time.Second

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 100
)

// StatusService owns the append-only snapshot store and the derived
// staleness flag.
type StatusService struct{}

// Ingest extracts a reading from a raw device payload and appends it.
func (s *StatusService) Ingest(payload *entity.DevicePayload) (*model.StatusSnapshot, error) {
	reading, err := ExtractReading(payload)
	if err != nil {
		return nil, err
	}
	return s.Append(reading.State, reading.Temperature, reading.Battery)
}

// Append inserts a snapshot stamped with the current time.
func (s *StatusService) Append(state string, temperature float64, battery int) (*model.StatusSnapshot, error) {
	db := database.GetDB()

	snapshot := &model.StatusSnapshot{
		Timestamp:   time.Now(),
		State:       state,
		Temperature: temperature,
		Battery:     battery,
	}
	if err := db.Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Latest returns the newest snapshot together with the offline flag.
// Exactly StaleThreshold old still counts as online.
func (s *StatusService) Latest() (*entity.StatusOut, error) {
	return s.latestAt(time.Now())
}

func (s *StatusService) latestAt(now time.Time) (*entity.StatusOut, error) {
	db := database.GetDB()

	snapshot := &model.StatusSnapshot{}
	err := db.Model(model.StatusSnapshot{}).
		Order("timestamp DESC, id DESC").
		First(snapshot).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoStatus
	} else if err != nil {
		return nil, err
	}

	return &entity.StatusOut{
		Id:          snapshot.Id,
		Timestamp:   snapshot.Timestamp,
		State:       snapshot.State,
		Temperature: snapshot.Temperature,
		Battery:     snapshot.Battery,
		Offline:     now.Sub(snapshot.Timestamp) > StaleThreshold,
	}, nil
}

// History returns up to limit snapshots, newest first. Ties on the
// timestamp fall back to insertion order, most recent insert first.
func (s *StatusService) History(limit int) ([]model.StatusSnapshot, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	db := database.GetDB()

	var snapshots []model.StatusSnapshot
	err := db.Model(model.StatusSnapshot{}).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&snapshots).
		Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

// ExtractReading maps a loosely shaped device payload onto a normalized
// reading. The nested Shelly shape wins when present; otherwise the flat
// shape is tried. Anything incomplete, or a battery outside 0-100, is
// rejected as malformed rather than patched up.
func ExtractReading(payload *entity.DevicePayload) (*entity.Reading, error) {
	if payload == nil {
		return nil, ErrMalformedPayload
	}

	var reading entity.Reading
	switch {
	case payload.Sensor != nil || payload.Tmp != nil || payload.Bat != nil:
		if payload.Sensor == nil || payload.Sensor.State == nil ||
			payload.Tmp == nil || payload.Tmp.Value == nil ||
			payload.Bat == nil || payload.Bat.Value == nil {
			return nil, ErrMalformedPayload
		}
		reading = entity.Reading{
			State:       *payload.Sensor.State,
			Temperature: *payload.Tmp.Value,
			Battery:     *payload.Bat.Value,
		}
	case payload.State != nil && payload.Temperature != nil && payload.Battery != nil:
		reading = entity.Reading{
			State:       *payload.State,
			Temperature: *payload.Temperature,
			Battery:     *payload.Battery,
		}
	default:
		return nil, ErrMalformedPayload
	}

	if reading.State == "" || reading.Battery < 0 || reading.Battery > 100 {
		return nil, ErrMalformedPayload
	}
	return &reading, nil
}

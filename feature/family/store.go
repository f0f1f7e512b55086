package family

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"heritage/core/database"
	"heritage/core/dataset"
	"heritage/core/reconcile"
	"heritage/core/replication"
	"heritage/feature/family/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when creating a record whose id is taken.
	ErrDuplicate = errors.New("record already exists")
	// ErrInvalid is returned for records without an external id.
	ErrInvalid = errors.New("record has no external id")
)

// Syncer receives the full dataset after every mutation.
type Syncer interface {
	Sync(ctx context.Context, kind replication.Kind, record *dataset.Record, records []dataset.Record) replication.Result
}

// Patch lists the fields an update may change. Nil fields are left alone.
type Patch struct {
	Name      *string        `json:"name,omitempty"`
	Born      *int           `json:"born,omitempty"`
	Died      *int           `json:"died,omitempty"`
	ClearBorn bool           `json:"clearBorn,omitempty"`
	ClearDied bool           `json:"clearDied,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Store is the family record store.
type Store struct {
	db     *gorm.DB
	syncer Syncer
	logger *zap.Logger
}

// NewStore creates a store. syncer may be nil.
func NewStore(db *gorm.DB, syncer Syncer, logger *zap.Logger) *Store {
	return &Store{db: db, syncer: syncer, logger: logger}
}

// Prepare creates or upgrades the persons and reigns tables.
func (s *Store) Prepare(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	for table, want := range map[string][]string{
		"persons": {"external_id", "name", "born", "died", "monarchs", "payload", "position"},
		"reigns":  {"id", "name", "reign_from", "reign_to", "position"},
	} {
		missing, err := database.MissingColumns(db, table, want)
		if err != nil {
			return err
		}
		if len(missing) > 0 && len(missing) < len(want) {
			s.logger.Info("Upgrading table", zap.String("table", table), zap.Strings("columns", missing))
		}
	}

	if err := db.AutoMigrate(&models.Person{}, &models.Reign{}); err != nil {
		return fmt.Errorf("failed to migrate family schema: %w", err)
	}
	return nil
}

// GetAll returns the dataset in its stored order.
func (s *Store) GetAll(ctx context.Context) ([]dataset.Record, error) {
	return s.all(s.db.WithContext(ctx))
}

// Records implements reconcile.Source.
func (s *Store) Records(ctx context.Context) ([]dataset.Record, error) {
	return s.GetAll(ctx)
}

// Get returns one record.
func (s *Store) Get(ctx context.Context, externalID string) (dataset.Record, error) {
	p, err := s.find(s.db.WithContext(ctx), externalID)
	if err != nil {
		return dataset.Record{}, err
	}
	return toRecord(p), nil
}

// Create adds a record at the end of the dataset. Its monarch association is
// computed from the reign list.
func (s *Store) Create(ctx context.Context, rec dataset.Record) ([]dataset.Record, error) {
	rec.ExternalID = strings.TrimSpace(rec.ExternalID)
	if rec.ExternalID == "" {
		return nil, ErrInvalid
	}

	var created dataset.Record
	var records []dataset.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.find(tx, rec.ExternalID); err == nil {
			return fmt.Errorf("%w: %s", ErrDuplicate, rec.ExternalID)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		intervals, err := s.intervals(tx)
		if err != nil {
			return err
		}
		rec.Monarchs = derive(rec, intervals)

		var last struct{ Max *int }
		if err := tx.Model(&models.Person{}).Select("MAX(position) AS max").Scan(&last).Error; err != nil {
			return fmt.Errorf("failed to read position: %w", err)
		}
		p := fromRecord(rec)
		if last.Max != nil {
			p.Position = *last.Max + 1
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to create record %s: %w", rec.ExternalID, err)
		}

		created = toRecord(p)
		records, err = s.all(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sync(ctx, replication.KindCreate, &created, records)
	return records, nil
}

// Update applies patch to one record and recomputes its monarch association.
func (s *Store) Update(ctx context.Context, externalID string, patch Patch) ([]dataset.Record, error) {
	var updated dataset.Record
	var records []dataset.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.find(tx, externalID)
		if err != nil {
			return err
		}

		rec := toRecord(p)
		applyPatch(&rec, patch)

		intervals, err := s.intervals(tx)
		if err != nil {
			return err
		}
		rec.Monarchs = derive(rec, intervals)

		next := fromRecord(rec)
		next.ID, next.Position, next.CreatedAt = p.ID, p.Position, p.CreatedAt
		if err := tx.Save(&next).Error; err != nil {
			return fmt.Errorf("failed to update record %s: %w", externalID, err)
		}

		updated = toRecord(next)
		records, err = s.all(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sync(ctx, replication.KindUpdate, &updated, records)
	return records, nil
}

// Delete removes one record.
func (s *Store) Delete(ctx context.Context, externalID string) ([]dataset.Record, error) {
	var removed dataset.Record
	var records []dataset.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.find(tx, externalID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Person{}, p.ID).Error; err != nil {
			return fmt.Errorf("failed to delete record %s: %w", externalID, err)
		}
		removed = toRecord(p)
		records, err = s.all(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sync(ctx, replication.KindDelete, &removed, records)
	return records, nil
}

// ReplaceAll swaps the whole dataset for records, keeping their order and
// stored associations.
func (s *Store) ReplaceAll(ctx context.Context, records []dataset.Record) ([]dataset.Record, error) {
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.ExternalID) == "" {
			return nil, ErrInvalid
		}
		if _, dup := seen[rec.ExternalID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, rec.ExternalID)
		}
		seen[rec.ExternalID] = struct{}{}
	}

	var out []dataset.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Person{}).Error; err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
		if len(records) > 0 {
			rows := make([]models.Person, 0, len(records))
			for i, rec := range records {
				p := fromRecord(rec)
				p.Position = i
				rows = append(rows, p)
			}
			if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
				return fmt.Errorf("failed to insert records: %w", err)
			}
		}
		var err error
		out, err = s.all(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sync(ctx, replication.KindBulk, nil, out)
	return out, nil
}

// SetAssociation implements reconcile.Source.
func (s *Store) SetAssociation(ctx context.Context, externalID string, ids []string) error {
	return s.SetAssociations(ctx, map[string][]string{externalID: ids})
}

// SetAssociations stores many monarch associations in one transaction and
// syncs the result once.
func (s *Store) SetAssociations(ctx context.Context, changes map[string][]string) error {
	if len(changes) == 0 {
		return nil
	}

	var records []dataset.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, ids := range changes {
			res := tx.Model(&models.Person{}).
				Where("external_id = ?", id).
				Update("monarchs", models.StringList(append([]string{}, ids...)))
			if res.Error != nil {
				return fmt.Errorf("failed to update monarchs of %s: %w", id, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
		}
		var err error
		records, err = s.all(tx)
		return err
	})
	if err != nil {
		return err
	}

	s.sync(ctx, replication.KindBulk, nil, records)
	return nil
}

// Intervals implements reconcile.Source.
func (s *Store) Intervals(ctx context.Context) ([]dataset.Interval, error) {
	return s.intervals(s.db.WithContext(ctx))
}

// ReplaceIntervals swaps the reign reference list.
func (s *Store) ReplaceIntervals(ctx context.Context, intervals []dataset.Interval) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Reign{}).Error; err != nil {
			return fmt.Errorf("failed to clear reigns: %w", err)
		}
		if len(intervals) == 0 {
			return nil
		}
		rows := make([]models.Reign, 0, len(intervals))
		for i, iv := range intervals {
			r := models.Reign{ID: iv.ID, Name: iv.Name, ReignFrom: iv.From, Position: i}
			if !iv.To.IsZero() {
				to := iv.To
				r.ReignTo = &to
			}
			rows = append(rows, r)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert reigns: %w", err)
		}
		return nil
	})
}

func (s *Store) all(db *gorm.DB) ([]dataset.Record, error) {
	var rows []models.Person
	if err := db.Order("position, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	out := make([]dataset.Record, 0, len(rows))
	for _, p := range rows {
		out = append(out, toRecord(p))
	}
	return out, nil
}

func (s *Store) find(db *gorm.DB, externalID string) (models.Person, error) {
	var p models.Person
	err := db.Where("external_id = ?", externalID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, fmt.Errorf("%w: %s", ErrNotFound, externalID)
	}
	if err != nil {
		return p, fmt.Errorf("failed to load record %s: %w", externalID, err)
	}
	return p, nil
}

func (s *Store) intervals(db *gorm.DB) ([]dataset.Interval, error) {
	var rows []models.Reign
	if err := db.Order("position, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load reigns: %w", err)
	}
	out := make([]dataset.Interval, 0, len(rows))
	for _, r := range rows {
		iv := dataset.Interval{ID: r.ID, Name: r.Name, From: r.ReignFrom}
		if r.ReignTo != nil {
			iv.To = *r.ReignTo
		}
		out = append(out, iv)
	}
	return out, nil
}

// sync forwards a mutation. The local write has already committed, so a
// failed push is only logged.
func (s *Store) sync(ctx context.Context, kind replication.Kind, rec *dataset.Record, records []dataset.Record) {
	if s.syncer == nil {
		return
	}
	res := s.syncer.Sync(ctx, kind, rec, records)
	if !res.Success {
		s.logger.Warn("Replication deferred",
			zap.String("kind", string(kind)),
			zap.String("error", res.Error))
	}
}

func derive(rec dataset.Record, intervals []dataset.Interval) []string {
	if rec.Born == nil {
		return []string{}
	}
	return reconcile.MatchIDs(*rec.Born, rec.Died, intervals)
}

func applyPatch(rec *dataset.Record, patch Patch) {
	if patch.Name != nil {
		rec.Name = *patch.Name
	}
	if patch.ClearBorn {
		rec.Born = nil
	} else if patch.Born != nil {
		rec.Born = dataset.Year(*patch.Born)
	}
	if patch.ClearDied {
		rec.Died = nil
	} else if patch.Died != nil {
		rec.Died = dataset.Year(*patch.Died)
	}
	if patch.Payload != nil {
		if rec.Payload == nil {
			rec.Payload = make(map[string]any, len(patch.Payload))
		}
		for k, v := range patch.Payload {
			if v == nil {
				delete(rec.Payload, k)
				continue
			}
			rec.Payload[k] = v
		}
	}
}

func toRecord(p models.Person) dataset.Record {
	rec := dataset.Record{
		ExternalID: p.ExternalID,
		Name:       p.Name,
		Born:       p.Born,
		Died:       p.Died,
		Monarchs:   append([]string{}, p.Monarchs...),
	}
	if len(p.Payload) > 0 {
		rec.Payload = map[string]any(p.Payload)
	}
	return rec
}

func fromRecord(rec dataset.Record) models.Person {
	return models.Person{
		ExternalID: rec.ExternalID,
		Name:       rec.Name,
		Born:       rec.Born,
		Died:       rec.Died,
		Monarchs:   models.StringList(append([]string{}, rec.Monarchs...)),
		Payload:    models.JSONMap(rec.Payload),
	}
}

var (
	_ reconcile.Source      = (*Store)(nil)
	_ reconcile.BatchWriter = (*Store)(nil)
)

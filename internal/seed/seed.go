// Package seed populates the development database with fixture users,
// groups and exercises, derives the group-exercise join table from the
// embedded references, and synthesizes placeholder images so the catalog
// renders without the real video-asset folder.
package seed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fastlab/regain-api/internal/infrastructure/datastore"
	"github.com/fastlab/regain-api/internal/infrastructure/logger"
)

// Seeder writes the fixture dataset.
type Seeder struct {
	store    *datastore.Store
	filesDir string
	log      *logger.Logger
}

// New creates a new seeder
func New(store *datastore.Store, filesDir string, log *logger.Logger) *Seeder {
	return &Seeder{store: store, filesDir: filesDir, log: log.WithComponent("seed")}
}

// Run builds the fixture document and overwrites the database.
func (s *Seeder) Run() error {
	now := datastore.NowISO()

	groups := []datastore.Record{}
	for _, area := range []string{"Head", "Shoulders", "Arms", "Chest", "Stomach", "Legs", "Hands"} {
		groups = append(groups, datastore.Record{
			"id":        uuid.NewString(),
			"area":      area,
			"users":     []datastore.Record{},
			"exercises": []datastore.Record{},
			"createdAt": now,
			"updatedAt": now,
		})
	}

	exercises := []datastore.Record{
		s.exercise("Neck Stretch", 30, "Gentle neck stretching exercise for rehabilitation", "neck-stretch", groups[0], now),
		s.exercise("Shoulder Rotation", 45, "Slow shoulder rotation to improve mobility", "shoulder-rotation", groups[1], now),
		s.exercise("Arm Raises", 60, "Controlled arm raising exercise", "arm-raises", groups[2], now),
		s.exercise("Hand Grip", 30, "Squeeze and release hand grip exercise", "hand-grip", groups[6], now),
	}

	users := []datastore.Record{
		{
			"id":              uuid.NewString(),
			"email":           "test@example.com",
			"onboard":         true,
			"overallProgress": 25,
			"groups":          []datastore.Record{groups[0], groups[2]},
			"exercises":       []datastore.Record{},
			"createdAt":       now,
			"updatedAt":       now,
		},
		{
			"id":              uuid.NewString(),
			"email":           "admin@fastlab.com",
			"onboard":         true,
			"overallProgress": 0,
			"groups":          []datastore.Record{},
			"exercises":       []datastore.Record{},
			"createdAt":       now,
			"updatedAt":       now,
		},
	}

	doc := datastore.NewDocument()
	doc.Users = users
	doc.Groups = groups
	doc.Exercises = exercises
	doc.GroupExercises = deriveGroupExercises(exercises, now)

	if err := s.writePlaceholders(exercises); err != nil {
		return err
	}

	if err := s.store.Save(doc); err != nil {
		return err
	}

	s.log.Infow("seeded database",
		"path", s.store.Path(),
		"users", len(users),
		"groups", len(groups),
		"exercises", len(exercises),
		"groupExercises", len(doc.GroupExercises),
	)
	return nil
}

func (s *Seeder) exercise(title string, seconds int, description, key string, group datastore.Record, now string) datastore.Record {
	return datastore.Record{
		"id":          uuid.NewString(),
		"title":       title,
		"time":        seconds,
		"description": description,
		"imageKey":    key + ".jpg",
		"videoKey":    key + ".mp4",
		"groups":      []datastore.Record{group},
		"createdAt":   now,
		"updatedAt":   now,
	}
}

// deriveGroupExercises builds the join table from each exercise's embedded
// group snapshots, one row per association.
func deriveGroupExercises(exercises []datastore.Record, now string) []datastore.Record {
	rows := []datastore.Record{}
	for _, ex := range exercises {
		groups, ok := ex["groups"].([]datastore.Record)
		if !ok {
			continue
		}
		for _, group := range groups {
			rows = append(rows, datastore.Record{
				"id":         uuid.NewString(),
				"groupId":    datastore.StringField(group, "id"),
				"exerciseId": datastore.StringField(ex, "id"),
				"createdAt":  now,
				"updatedAt":  now,
			})
		}
	}
	return rows
}

// writePlaceholders drops an SVG placeholder under each exercise's
// imageKey. The key keeps its image extension, so these files exercise
// the media server's SVG content sniff.
func (s *Seeder) writePlaceholders(exercises []datastore.Record) error {
	if err := os.MkdirAll(s.filesDir, 0755); err != nil {
		return fmt.Errorf("create files dir: %w", err)
	}
	for _, ex := range exercises {
		key := datastore.StringField(ex, "imageKey")
		if key == "" {
			continue
		}
		svg := placeholderSVG(datastore.StringField(ex, "title"))
		if err := os.WriteFile(filepath.Join(s.filesDir, key), []byte(svg), 0644); err != nil {
			return fmt.Errorf("write placeholder %s: %w", key, err)
		}
	}
	return nil
}

func placeholderSVG(title string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="400" height="300" viewBox="0 0 400 300">`+
		`<rect width="400" height="300" fill="#e8eef4"/>`+
		`<text x="200" y="150" text-anchor="middle" font-family="sans-serif" font-size="20" fill="#4a5a6a">%s</text>`+
		`</svg>`, title)
}

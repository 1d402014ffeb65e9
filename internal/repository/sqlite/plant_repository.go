package sqlite

import (
	"database/sql"
	"fmt"

	"gardenvision/internal/models"
)

// PlantRepository implements repository.PlantRepository for SQLite.
type PlantRepository struct {
	db *DB
}

// NewPlantRepository creates a new SQLite plant repository.
func NewPlantRepository(db *DB) *PlantRepository {
	return &PlantRepository{db: db}
}

// ReplaceForPhoto writes the plants of one photo in a single transaction.
// Rows are keyed by (photo_id, idx) so storing the same result twice leaves
// one row per plant.
func (r *PlantRepository) ReplaceForPhoto(photoID int64, plants []models.Plant) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO plants (photo_id, idx, label, plant_label, plant_class, confidence,
			x1, y1, x2, y2, container, container_score, species, species_confidence, species_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(photo_id, idx) DO UPDATE SET
			label = excluded.label,
			plant_label = excluded.plant_label,
			plant_class = excluded.plant_class,
			confidence = excluded.confidence,
			x1 = excluded.x1, y1 = excluded.y1, x2 = excluded.x2, y2 = excluded.y2,
			container = excluded.container,
			container_score = excluded.container_score,
			species = excluded.species,
			species_confidence = excluded.species_confidence,
			species_status = excluded.species_status,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range plants {
		if _, err := stmt.Exec(photoID, i, p.Label, p.PlantLabel, p.PlantClass, p.Confidence,
			p.X1, p.Y1, p.X2, p.Y2, p.Container, p.ContainerScore, p.Species, p.SpeciesConfidence, p.SpeciesStatus); err != nil {
			return fmt.Errorf("failed to upsert plant %d: %w", i, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM plants WHERE photo_id = ? AND idx >= ?`, photoID, len(plants)); err != nil {
		return fmt.Errorf("failed to prune plants: %w", err)
	}

	return tx.Commit()
}

// GetByPhotoID retrieves the plants of a photo in result order.
func (r *PlantRepository) GetByPhotoID(photoID int64) ([]models.Plant, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, photo_id, idx, label, plant_label, plant_class, confidence, x1, y1, x2, y2,
			container, container_score, species, species_confidence, species_status, updated_at
		FROM plants WHERE photo_id = ? ORDER BY idx
	`, photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plants: %w", err)
	}
	defer rows.Close()

	plants := []models.Plant{}
	for rows.Next() {
		var p models.Plant
		var species sql.NullString
		if err := rows.Scan(&p.ID, &p.PhotoID, &p.Idx, &p.Label, &p.PlantLabel, &p.PlantClass, &p.Confidence,
			&p.X1, &p.Y1, &p.X2, &p.Y2, &p.Container, &p.ContainerScore, &species, &p.SpeciesConfidence,
			&p.SpeciesStatus, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plant: %w", err)
		}
		if species.Valid {
			p.Species = &species.String
		}
		plants = append(plants, p)
	}
	return plants, rows.Err()
}

// GetStats returns counts over every stored plant.
func (r *PlantRepository) GetStats() (*models.PlantStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &models.PlantStats{
		PerContainer: make(map[string]int),
		PerSpecies:   make(map[string]int),
		PerClass:     make(map[string]int),
	}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM photos`).Scan(&stats.TotalPhotos); err != nil {
		return nil, fmt.Errorf("failed to count photos: %w", err)
	}
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM plants`).Scan(&stats.TotalPlants); err != nil {
		return nil, fmt.Errorf("failed to count plants: %w", err)
	}

	groups := []struct {
		query string
		into  map[string]int
	}{
		{`SELECT container, COUNT(*) FROM plants GROUP BY container`, stats.PerContainer},
		{`SELECT species, COUNT(*) FROM plants WHERE species IS NOT NULL GROUP BY species`, stats.PerSpecies},
		{`SELECT plant_class, COUNT(*) FROM plants GROUP BY plant_class`, stats.PerClass},
	}
	for _, g := range groups {
		if err := r.countInto(g.query, g.into); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func (r *PlantRepository) countInto(query string, into map[string]int) error {
	rows, err := r.db.Conn().Query(query)
	if err != nil {
		return fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan stats: %w", err)
		}
		into[key] = count
	}
	return rows.Err()
}

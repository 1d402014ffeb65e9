package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"gardenvision/internal/models"
)

// PhotoRepository implements repository.PhotoRepository for SQLite.
type PhotoRepository struct {
	db *DB
}

// NewPhotoRepository creates a new SQLite photo repository.
func NewPhotoRepository(db *DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

const photoColumns = `p.id, p.hash, p.filename, p.width, p.height, p.filepath, p.filesize, p.plant_count, p.created_at`

func scanPhoto(row interface{ Scan(...any) error }) (*models.Photo, error) {
	var p models.Photo
	if err := row.Scan(&p.ID, &p.Hash, &p.Filename, &p.Width, &p.Height, &p.FilePath, &p.FileSize, &p.PlantCount, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save upserts a photo by its hash.
func (r *PhotoRepository) Save(photo *models.Photo) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	var id int64
	err := r.db.Conn().QueryRow(`
		INSERT INTO photos (hash, filename, width, height, filepath, filesize, plant_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			filename = excluded.filename,
			width = excluded.width,
			height = excluded.height,
			filepath = CASE WHEN excluded.filepath != '' THEN excluded.filepath ELSE photos.filepath END,
			filesize = excluded.filesize,
			plant_count = excluded.plant_count
		RETURNING id
	`, photo.Hash, photo.Filename, photo.Width, photo.Height, photo.FilePath, photo.FileSize, photo.PlantCount).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save photo: %w", err)
	}

	photo.ID = id
	return id, nil
}

// GetByID retrieves a photo by its ID.
func (r *PhotoRepository) GetByID(id int64) (*models.Photo, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	photo, err := scanPhoto(r.db.Conn().QueryRow(`SELECT `+photoColumns+` FROM photos p WHERE p.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// GetByHash retrieves a photo by the MD5 of its bytes.
func (r *PhotoRepository) GetByHash(hash string) (*models.Photo, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	photo, err := scanPhoto(r.db.Conn().QueryRow(`SELECT `+photoColumns+` FROM photos p WHERE p.hash = ?`, hash))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// filterClause builds the WHERE part shared by GetAll and GetTotalCount.
func filterClause(filter *models.PhotoFilter) (string, []interface{}) {
	var where []string
	args := []interface{}{}

	plantConds := []string{}
	plantArgs := []interface{}{}
	if filter.Container != "" {
		plantConds = append(plantConds, "pl.container = ?")
		plantArgs = append(plantArgs, filter.Container)
	}
	if filter.Species != "" {
		plantConds = append(plantConds, "pl.species = ?")
		plantArgs = append(plantArgs, filter.Species)
	}
	if filter.PlantClass != "" {
		plantConds = append(plantConds, "pl.plant_class = ?")
		plantArgs = append(plantArgs, filter.PlantClass)
	}
	if len(plantConds) > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM plants pl WHERE pl.photo_id = p.id AND "+strings.Join(plantConds, " AND ")+")")
		args = append(args, plantArgs...)
	}

	if !filter.StartDate.IsZero() {
		where = append(where, "DATE(p.created_at) >= DATE(?)")
		args = append(args, filter.StartDate.UTC().Format("2006-01-02"))
	}
	if !filter.EndDate.IsZero() {
		where = append(where, "DATE(p.created_at) <= DATE(?)")
		args = append(args, filter.EndDate.UTC().Format("2006-01-02"))
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// GetAll retrieves photos based on filter criteria, newest first.
func (r *PhotoRepository) GetAll(filter *models.PhotoFilter) ([]models.Photo, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	clause, args := filterClause(filter)
	query := `SELECT ` + photoColumns + ` FROM photos p` + clause + ` ORDER BY p.created_at DESC, p.id DESC`

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, *photo)
	}
	return photos, rows.Err()
}

// GetTotalCount returns the number of photos matching the filter.
func (r *PhotoRepository) GetTotalCount(filter *models.PhotoFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	clause, args := filterClause(filter)
	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM photos p`+clause, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// Delete removes a photo and its plants.
func (r *PhotoRepository) Delete(id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM plants WHERE photo_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete plants: %w", err)
	}
	if _, err := r.db.Conn().Exec(`DELETE FROM photos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

package repository

import (
	"database/sql"
	"errors"

	"task-manager-api/internal/models"
)

type CategoryRepo struct {
	DB *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{DB: db}
}

// CategoryPatch berisi field yang ingin diubah.
// Field nil berarti tidak disentuh.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// ListByUser mengambil semua kategori milik user, urut nama.
func (r *CategoryRepo) ListByUser(userID int) ([]models.Category, error) {
	rows, err := r.DB.Query(
		"SELECT id, name, description, user_id, created_at, updated_at FROM categories WHERE user_id = $1 ORDER BY name ASC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var category models.Category
		err := rows.Scan(&category.ID, &category.Name, &category.Description,
			&category.UserID, &category.CreatedAt, &category.UpdatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// FindByIDAndUser mengambil satu kategori milik user.
// Mengembalikan (nil, nil) jika tidak ada atau bukan milik user.
func (r *CategoryRepo) FindByIDAndUser(id, userID int) (*models.Category, error) {
	var category models.Category
	err := r.DB.QueryRow(
		"SELECT id, name, description, user_id, created_at, updated_at FROM categories WHERE id = $1 AND user_id = $2",
		id, userID,
	).Scan(&category.ID, &category.Name, &category.Description,
		&category.UserID, &category.CreatedAt, &category.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepo) Create(name string, description *string, userID int) (*models.Category, error) {
	var category models.Category
	err := r.DB.QueryRow(
		`INSERT INTO categories (name, description, user_id) VALUES ($1, $2, $3)
		 RETURNING id, name, description, user_id, created_at, updated_at`,
		name, description, userID,
	).Scan(&category.ID, &category.Name, &category.Description,
		&category.UserID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Update menerapkan patch lewat satu statement tetap.
// COALESCE mempertahankan kolom yang field patch-nya nil.
func (r *CategoryRepo) Update(id, userID int, patch CategoryPatch) (*models.Category, error) {
	res, err := r.DB.Exec(
		`UPDATE categories
		 SET name = COALESCE($1, name),
		     description = COALESCE($2, description),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3 AND user_id = $4`,
		patch.Name, patch.Description, id, userID,
	)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return r.FindByIDAndUser(id, userID)
}

func (r *CategoryRepo) Delete(id, userID int) (bool, error) {
	res, err := r.DB.Exec("DELETE FROM categories WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CountTasks menghitung task user dalam kategori ini.
func (r *CategoryRepo) CountTasks(id, userID int) (int, error) {
	var count int
	err := r.DB.QueryRow(
		"SELECT COUNT(*) FROM tasks WHERE category_id = $1 AND user_id = $2",
		id, userID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

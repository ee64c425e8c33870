package repository

import (
	"database/sql"
	"errors"

	"task-manager-api/internal/models"
)

type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// FindByID mengambil field publik user (tanpa password).
// Mengembalikan (nil, nil) jika user tidak ditemukan.
func (r *UserRepo) FindByID(id int) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRow(
		"SELECT id, username, email, created_at, updated_at FROM users WHERE id = $1",
		id,
	).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail mengambil user beserta hash password untuk login.
func (r *UserRepo) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRow(
		"SELECT id, username, email, password, created_at, updated_at FROM users WHERE email = $1",
		email,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRow(
		"SELECT id, username, email, password, created_at, updated_at FROM users WHERE username = $1",
		username,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create menyimpan user baru dan mengembalikan id yang dihasilkan.
func (r *UserRepo) Create(username, email, hashedPassword string) (int, error) {
	var id int
	err := r.DB.QueryRow(
		"INSERT INTO users (username, email, password) VALUES ($1, $2, $3) RETURNING id",
		username, email, hashedPassword,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateProfile mengganti username dan email.
// Mengembalikan false jika user tidak ada.
func (r *UserRepo) UpdateProfile(id int, username, email string) (bool, error) {
	res, err := r.DB.Exec(
		"UPDATE users SET username = $1, email = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3",
		username, email, id,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete menghapus akun. Task dan kategori ikut terhapus lewat FK CASCADE.
func (r *UserRepo) Delete(id int) (bool, error) {
	res, err := r.DB.Exec("DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

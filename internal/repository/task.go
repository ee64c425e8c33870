package repository

import (
	"database/sql"
	"errors"
	"time"

	"task-manager-api/internal/models"
)

type TaskRepo struct {
	DB *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{DB: db}
}

// taskColumns adalah daftar kolom yang sama untuk semua query task,
// termasuk nama kategori hasil LEFT JOIN.
const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date,
	t.user_id, t.category_id, c.name AS category_name, t.created_at, t.updated_at`

// TaskFilter menyaring daftar task. Nilai kosong/0 berarti tanpa filter.
type TaskFilter struct {
	Status     string
	Priority   string
	CategoryID int
}

// TaskCreate berisi data task baru. Field nil memakai default kolom.
type TaskCreate struct {
	Title       string
	Description *string
	Status      string
	Priority    string
	DueDate     *time.Time
	CategoryID  *int
}

// TaskPatch berisi field yang ingin diubah; nil berarti tidak disentuh.
// SetCategory menandakan category_id memang dikirim (termasuk untuk
// mengosongkan referensi, CategoryID nil).
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	SetCategory bool
	CategoryID  *int
}

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status,
		&task.Priority, &task.DueDate, &task.UserID, &task.CategoryID,
		&task.CategoryName, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	defer rows.Close()
	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// ListByUser mengambil semua task milik user, terbaru lebih dulu.
// Filter diterapkan lewat satu statement tetap, tanpa merangkai SQL.
func (r *TaskRepo) ListByUser(userID int, filter TaskFilter) ([]models.Task, error) {
	rows, err := r.DB.Query(
		`SELECT `+taskColumns+`
		 FROM tasks t
		 LEFT JOIN categories c ON t.category_id = c.id
		 WHERE t.user_id = $1
		   AND ($2 = '' OR t.status = $2)
		   AND ($3 = '' OR t.priority = $3)
		   AND ($4 = 0 OR t.category_id = $4)
		 ORDER BY t.created_at DESC`,
		userID, filter.Status, filter.Priority, filter.CategoryID,
	)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// FindByIDAndUser mengambil satu task milik user.
// Mengembalikan (nil, nil) jika tidak ada atau bukan milik user.
func (r *TaskRepo) FindByIDAndUser(id, userID int) (*models.Task, error) {
	task, err := scanTask(r.DB.QueryRow(
		`SELECT `+taskColumns+`
		 FROM tasks t
		 LEFT JOIN categories c ON t.category_id = c.id
		 WHERE t.id = $1 AND t.user_id = $2`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Create menyimpan task baru lalu membaca ulang baris lengkap
// dengan nama kategorinya.
func (r *TaskRepo) Create(userID int, data TaskCreate) (*models.Task, error) {
	var id int
	err := r.DB.QueryRow(
		`INSERT INTO tasks (title, description, status, priority, due_date, user_id, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		data.Title, data.Description, data.Status, data.Priority,
		data.DueDate, userID, data.CategoryID,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.FindByIDAndUser(id, userID)
}

// Update menerapkan patch lewat satu statement tetap.
// COALESCE mempertahankan kolom yang field patch-nya nil; category_id
// hanya diganti jika SetCategory true.
func (r *TaskRepo) Update(id, userID int, patch TaskPatch) (*models.Task, error) {
	res, err := r.DB.Exec(
		`UPDATE tasks
		 SET title = COALESCE($1, title),
		     description = COALESCE($2, description),
		     status = COALESCE($3, status),
		     priority = COALESCE($4, priority),
		     due_date = COALESCE($5, due_date),
		     category_id = CASE WHEN $6 THEN $7 ELSE category_id END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8 AND user_id = $9`,
		patch.Title, patch.Description, patch.Status, patch.Priority,
		patch.DueDate, patch.SetCategory, patch.CategoryID, id, userID,
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

func (r *TaskRepo) Delete(id, userID int) (bool, error) {
	res, err := r.DB.Exec("DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListByCategory mengambil task user dalam satu kategori, terbaru lebih dulu.
func (r *TaskRepo) ListByCategory(categoryID, userID int) ([]models.Task, error) {
	rows, err := r.DB.Query(
		`SELECT `+taskColumns+`
		 FROM tasks t
		 LEFT JOIN categories c ON t.category_id = c.id
		 WHERE t.category_id = $1 AND t.user_id = $2
		 ORDER BY t.created_at DESC`,
		categoryID, userID,
	)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// ReleaseCategory melepas referensi kategori dari semua task user yang
// memakainya, sebelum kategorinya dihapus. Mengembalikan id task yang
// terdampak agar cache-nya bisa di-invalidasi.
func (r *TaskRepo) ReleaseCategory(categoryID, userID int) ([]int, error) {
	rows, err := r.DB.Query(
		"SELECT id FROM tasks WHERE category_id = $1 AND user_id = $2",
		categoryID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	_, err = r.DB.Exec(
		"UPDATE tasks SET category_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE category_id = $1 AND user_id = $2",
		categoryID, userID,
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Statistics menghitung agregat task milik user: total dan per status,
// jumlah prioritas tinggi, dan task belum selesai yang jatuh tempo
// dalam 48 jam ke depan.
func (r *TaskRepo) Statistics(userID int) (*models.TaskStatistics, error) {
	stats := &models.TaskStatistics{}

	rows, err := r.DB.Query(
		"SELECT status, COUNT(*) FROM tasks WHERE user_id = $1 GROUP BY status",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case models.StatusCompleted:
			stats.Completed = count
		case models.StatusPending:
			stats.Pending = count
		case models.StatusInProgress:
			stats.InProgress = count
		case models.StatusCancelled:
			stats.Cancelled = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.DB.QueryRow(
		"SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND priority IN ('high', 'urgent')",
		userID,
	).Scan(&stats.HighPriority)
	if err != nil {
		return nil, err
	}

	err = r.DB.QueryRow(
		`SELECT COUNT(*) FROM tasks
		 WHERE user_id = $1
		   AND status != 'completed'
		   AND due_date IS NOT NULL
		   AND due_date >= NOW()
		   AND due_date <= NOW() + INTERVAL '48 hours'`,
		userID,
	).Scan(&stats.DueSoon)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

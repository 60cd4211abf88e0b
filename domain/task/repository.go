package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides database operations for tasks.
// Every mutation is a single gorm statement, which gorm runs in its own
// transaction; row-level consistency is left to the database.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the tasks table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Task{})
}

// Create assigns the creation timestamps, inserts the task and fills in its ID.
func (r *Repository) Create(ctx context.Context, task *Task) error {
	now := r.db.NowFunc()
	task.ID = 0
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Task, error) {
	var task Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// ExistsByID reports whether a task with the given ID exists.
func (r *Repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check task existence: %w", err)
	}
	return count > 0, nil
}

// Update writes every mutable field of an existing task and refreshes UpdatedAt.
// CreatedAt is never written. Nil Description and DueDate are stored as NULL.
func (r *Repository) Update(ctx context.Context, task *Task) error {
	now := r.db.NowFunc()
	if now.Before(task.CreatedAt) {
		now = task.CreatedAt
	}

	result := r.db.WithContext(ctx).Model(&Task{}).Where("id = ?", task.ID).Updates(map[string]any{
		"title":        task.Title,
		"description":  task.Description,
		"is_completed": task.IsCompleted,
		"due_date":     task.DueDate,
		"updated_at":   now,
	})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	task.UpdatedAt = now
	return nil
}

// Delete removes a task by its ID. Deleting a missing ID is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&Task{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Count returns the number of tasks matching the filter.
func (r *Repository) Count(ctx context.Context, filter Filter) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Task{}).Scopes(filterScope(filter)).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return total, nil
}

// List returns one page of tasks matching the filter, ordered by req's sort
// orders (DefaultSort when empty). The ID is appended as a tie-breaker so
// that pages never overlap.
func (r *Repository) List(ctx context.Context, filter Filter, req PageRequest) (Page[Task], error) {
	if err := req.Validate(); err != nil {
		return Page[Task]{}, err
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return Page[Task]{}, err
	}

	var tasks []Task
	if int64(req.Offset()) < total {
		query := r.db.WithContext(ctx).Model(&Task{}).Scopes(filterScope(filter), orderScope(req.Orders()))
		if err := query.Offset(req.Offset()).Limit(req.Size).Find(&tasks).Error; err != nil {
			return Page[Task]{}, fmt.Errorf("failed to list tasks: %w", err)
		}
	}

	return NewPage(tasks, req, total), nil
}

// filterScope applies the WHERE clause matching the filter's kind.
func filterScope(filter Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch filter.Kind() {
		case FilterByStatus:
			return db.Where("is_completed = ?", *filter.IsCompleted)
		case FilterByTitle:
			return db.Where(titleContains, likePattern(filter.Title))
		case FilterByStatusAndTitle:
			return db.Where("is_completed = ?", *filter.IsCompleted).
				Where(titleContains, likePattern(filter.Title))
		default:
			return db
		}
	}
}

const titleContains = `LOWER(title) LIKE LOWER(?) ESCAPE '\'`

// likePattern wraps s in wildcards, escaping LIKE metacharacters so the
// user's text is matched literally.
func likePattern(s string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(s) + "%"
}

// orderScope applies the sort orders; orders are assumed validated.
func orderScope(orders []SortOrder) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		hasID := false
		for _, o := range orders {
			column := sortColumns[o.Field]
			if column == "id" {
				hasID = true
			}
			db = db.Order(clause.OrderByColumn{
				Column: clause.Column{Name: column},
				Desc:   o.Direction == Desc,
			})
		}
		if !hasID && len(orders) > 0 {
			db = db.Order(clause.OrderByColumn{
				Column: clause.Column{Name: "id"},
				Desc:   orders[0].Direction == Desc,
			})
		}
		return db
	}
}

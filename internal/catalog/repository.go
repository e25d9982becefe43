package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

var ErrMealNotFound = errors.New("meal not found")

type Repository struct {
	db *sql.DB
}

type RepoInterface interface {
	GetAllMeals(ctx context.Context) ([]*Meal, error)
	GetMealsByCategory(ctx context.Context, category string) ([]*Meal, error)
	GetMeal(ctx context.Context, id int64) (*Meal, error)
	Close() error
	RunMigrations(string) error
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

const mealColumns = `id, category, title, description, price, protein, is_veg, image_url, created_at`

func (r *Repository) GetAllMeals(ctx context.Context) ([]*Meal, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM meals
		ORDER BY id
	`, mealColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	return scanMeals(rows)
}

func (r *Repository) GetMealsByCategory(ctx context.Context, category string) ([]*Meal, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM meals
		WHERE category = $1
		ORDER BY id
	`, mealColumns)

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	return scanMeals(rows)
}

func (r *Repository) GetMeal(ctx context.Context, id int64) (*Meal, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM meals
		WHERE id = $1
	`, mealColumns)

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query meal: %w", err)
	}
	defer rows.Close()

	meals, err := scanMeals(rows)
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, ErrMealNotFound
	}
	return meals[0], nil
}

func scanMeals(rows *sql.Rows) ([]*Meal, error) {
	var meals []*Meal
	for rows.Next() {
		m := &Meal{}
		err := rows.Scan(
			&m.ID,
			&m.Category,
			&m.Title,
			&m.Description,
			&m.Price,
			&m.Protein,
			&m.IsVeg,
			&m.ImageURL,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return meals, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"irrigation_node/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
	TouchLogin(id int, at time.Time) error
	List() ([]models.Operator, error)
}

// SessionRepo keeps the single checkpoint row of the node session.
type SessionRepo interface {
	Save(ctx context.Context, s models.SessionCheckpoint) error
	Load(ctx context.Context) (models.SessionCheckpoint, bool, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.NodeEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.NodeEvent, error)
}

type Repository struct {
	SessionRepo SessionRepo
	EventRepo   EventRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		SessionRepo: NewSessionSQLite(db),
		EventRepo:   NewEventSQLite(db),
		Auth:        NewOperatorRepository(db),
	}
}

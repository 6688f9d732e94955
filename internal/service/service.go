package service

import (
	"context"

	"irrigation_node/internal/models"
	"irrigation_node/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Monitoring exposes a read-only view of the running node.
type Monitoring interface {
	GetStatus(ctx context.Context) (models.NodeStatus, error)
}

// Commands accepts command lines from outside the serial link. Lines are
// handled by the command consumer goroutine exactly like serial input.
type Commands interface {
	Submit(line string) error
}

// EventLog exposes the append-only journal with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.NodeEvent, error)
}

// Service aggregates what the diagnostics API needs.
type Service struct {
	Monitoring
	Commands
	EventLog
	Authorization
}

// NewService wires the running node and repositories into the API services.
func NewService(node *Node, repos *repository.Repository, auth AuthConfig) *Service {
	return &Service{
		Monitoring:    node.Monitoring,
		Commands:      node.Consumer,
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, auth),
	}
}

// Package families serves family, membership and invite endpoints.
package families

import (
	"context"

	"gorm.io/gorm"

	"kidcanvas/pkg/logger"
)

type (
	Members interface {
		MemberRole(ctx context.Context, familyID, userID string) (string, error)
	}

	Mailer interface {
		Send(to, subject, body string) error
	}

	TaskRunner interface {
		Submit(name string, fn func(ctx context.Context) error) bool
	}
)

type Handler struct {
	db      *gorm.DB
	members Members
	mailer  Mailer
	tasks   TaskRunner
	logger  logger.Interface
	appURL  string
}

func New(db *gorm.DB, m Members, mailer Mailer, tasks TaskRunner, l logger.Interface, appURL string) *Handler {
	return &Handler{db: db, members: m, mailer: mailer, tasks: tasks, logger: l, appURL: appURL}
}

// sendLater queues an email. Delivery problems are logged, never returned.
func (h *Handler) sendLater(name, to, subject, body string) {
	ok := h.tasks.Submit(name, func(context.Context) error {
		return h.mailer.Send(to, subject, body)
	})
	if !ok {
		h.logger.Warn("FamilyHandler - email %s to %s dropped", name, to)
	}
}

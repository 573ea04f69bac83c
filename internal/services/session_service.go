package services

import (
	"context"
	"fmt"
	"log/slog"

	"pokerhub/internal/amqp"
	"pokerhub/internal/core"
	"pokerhub/internal/storage"
)

// SessionService orchestrates session writes across SQLite and AMQP.
// The local write is authoritative, the sync message is best effort.
type SessionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewSessionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *SessionService {
	return &SessionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// SubmitSessions saves entries locally and publishes a sync message per row.
func (s *SessionService) SubmitSessions(ctx context.Context, club string, entries []core.SessionEntry) error {
	for _, e := range entries {
		id, err := s.storage.CreateSessionEntry(ctx, club, e)
		if err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		// Version 1 for new rows; publish failure is non-fatal
		if err := s.publishSyncMessage(ctx, id, 1); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"id", id, "error", err)
		}
	}
	return nil
}

// DeleteSession removes a session locally and publishes a delete message
// so the worker can remove the matching remote row.
func (s *SessionService) DeleteSession(ctx context.Context, club string, id int64) error {
	entry, entryClub, err := s.storage.GetSessionEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("load session %d: %w", id, err)
	}
	if entryClub != club {
		return fmt.Errorf("session %d does not belong to club %s", id, club)
	}

	if err := s.storage.Delete(ctx, club, fmt.Sprintf("%d", id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	msg := amqp.NewSessionDeleteMessage(entry.Date.ISO(), entry.Player,
		entry.BuyIn.Cents, entry.CashOut.Cents, club)
	if err := s.publishDeleteMessage(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
		// The local delete already happened, don't fail the request
	}

	return nil
}

func (s *SessionService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishSessionSync(ctx, id, version)
}

func (s *SessionService) publishDeleteMessage(ctx context.Context, msg *amqp.SessionDeleteMessage) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.amqpClient.PublishSessionDelete(ctx, msg)
}

// Close closes both storage and AMQP connections
func (s *SessionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close session service: %v", errs)
	}

	return nil
}

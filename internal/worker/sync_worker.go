package worker

import (
	"context"
	"fmt"
	"log/slog"

	"pokerhub/internal/amqp"
	"pokerhub/internal/core"
	"pokerhub/internal/sheets"
	"pokerhub/internal/storage"
)

// SyncWorker pushes locally stored sessions to the remote ledger.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.LedgerWriter
	deleter   sheets.LedgerDeleter
	reader    sheets.LedgerReader
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, writer sheets.LedgerWriter, deleter sheets.LedgerDeleter, reader sheets.LedgerReader, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		reader:    reader,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single session sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SessionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	entry, club, err := w.storage.GetSessionEntry(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get session from storage: %w", err)
	}

	if err := w.syncSessionToLedger(ctx, msg.ID, club, entry); err != nil {
		return fmt.Errorf("sync session to ledger: %w", err)
	}

	return nil
}

// HandleDeleteMessage processes a single session delete message from AMQP.
// The local row is already gone, so the remote row is located by its
// identifying tuple.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.SessionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		"player", msg.Player, "date", msg.Date, "club", msg.Club)

	if w.deleter == nil || w.reader == nil {
		slog.WarnContext(ctx, "No ledger deleter configured, skipping remote deletion",
			"player", msg.Player, "date", msg.Date)
		return nil
	}

	rowRef, err := w.findRemoteRow(ctx, msg)
	if err != nil {
		return err
	}
	if rowRef == "" {
		slog.WarnContext(ctx, "No matching remote row found for delete",
			"player", msg.Player, "date", msg.Date, "club", msg.Club)
		return nil
	}

	if err := w.deleter.Delete(ctx, msg.Club, rowRef); err != nil {
		slog.ErrorContext(ctx, "Failed to delete remote session",
			"player", msg.Player, "date", msg.Date, "error", err)
		return fmt.Errorf("delete remote session: %w", err)
	}

	slog.InfoContext(ctx, "Successfully deleted remote session",
		"player", msg.Player, "date", msg.Date, "row_ref", rowRef)

	return nil
}

// findRemoteRow scans the remote ledger for the first row matching the
// delete message. Row references are 1-based positions, matching what
// the remote backends expect, with the header row accounted for by the
// Google backend itself.
func (w *SyncWorker) findRemoteRow(ctx context.Context, msg *amqp.SessionDeleteMessage) (string, error) {
	entries, err := w.reader.Load(ctx, msg.Club)
	if err != nil {
		return "", fmt.Errorf("load remote ledger: %w", err)
	}

	for i, e := range entries {
		if e.Date.ISO() == msg.Date &&
			e.Player == msg.Player &&
			e.BuyIn.Cents == msg.BuyInCents &&
			e.CashOut.Cents == msg.CashOutCents {
			return fmt.Sprintf("%d", i+1), nil
		}
	}
	return "", nil
}

// ProcessPendingSessions processes any sessions that haven't been synced yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingSessions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncSessions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending sessions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending sessions", "count", len(pending))

	for _, p := range pending {
		entry, club, err := w.storage.GetSessionEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get session", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.syncSessionToLedger(ctx, p.ID, club, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync session", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck verifies and syncs any pending sessions at worker startup.
// This recovers from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncSessions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending sessions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending sessions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending sessions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		entry, club, err := w.storage.GetSessionEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get session for startup sync",
				"id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.syncSessionToLedger(ctx, p.ID, club, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync session during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncSessionToLedger(ctx context.Context, id int64, club string, entry core.SessionEntry) error {
	if err := w.writer.Append(ctx, club, []core.SessionEntry{entry}); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to remote ledger: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		// The sync itself worked, don't return an error
	}

	slog.InfoContext(ctx, "Successfully synced session",
		"id", id,
		"player", entry.Player,
		"date", entry.Date.ISO(),
		"profit_cents", entry.Profit.Cents,
		"club", club)

	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nipa/healthsync/internal/client/attachments"
	"github.com/nipa/healthsync/internal/client/client"
	"github.com/nipa/healthsync/internal/client/models"
	"github.com/nipa/healthsync/internal/client/repositories/clienthistory"
	"github.com/nipa/healthsync/internal/client/repositories/metadata"
	"github.com/nipa/healthsync/internal/client/repositories/notifications"
	"github.com/nipa/healthsync/internal/client/scheduler"
	"github.com/nipa/healthsync/internal/filex"
	"github.com/nipa/healthsync/internal/logging"
)

// SyncService reconciles the local cache with the remote collections.
// It is not safe to run two jobs at once; the scheduler serializes them.
type SyncService struct {
	remote        client.Remote
	meta          metadata.Repository
	log           logging.Logger
	now           func() time.Time
	notifications *kindSync[models.Notification]
	history       *kindSync[models.ClientHistoryItem]
}

// SyncOption customizes a SyncService.
type SyncOption func(*SyncService)

// WithUploader enables attachment upload before client history pushes.
func WithUploader(u attachments.Uploader) SyncOption {
	return func(s *SyncService) {
		s.history.prepare = func(ctx context.Context, ownerID string, item models.ClientHistoryItem) (models.ClientHistoryItem, error) {
			return uploadAttachments(ctx, u, ownerID, item)
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) SyncOption {
	return func(s *SyncService) { s.now = now }
}

func NewSyncService(
	remote client.Remote,
	notes notifications.Repository,
	history clienthistory.Repository,
	meta metadata.Repository,
	log logging.Logger,
	opts ...SyncOption,
) *SyncService {
	s := &SyncService{
		remote: remote,
		meta:   meta,
		log:    log.With("component", "sync"),
		now:    time.Now,
		notifications: &kindSync[models.Notification]{
			kind:   models.KindNotification,
			store:  notes,
			decode: models.DecodeNotification,
		},
		history: &kindSync[models.ClientHistoryItem]{
			kind:   models.KindClientHistory,
			store:  history,
			decode: models.DecodeClientHistoryItem,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pull fetches the owner's documents of kind, merges them as synced records
// and prunes synced local records the remote no longer has. Local records
// with synced=false are never pruned.
func (s *SyncService) Pull(ctx context.Context, kind models.Kind, ownerID string) (PullReport, error) {
	log := s.log.With("kind", string(kind), "owner", ownerID)
	switch kind {
	case models.KindNotification:
		return s.notifications.pull(ctx, s.remote, log, ownerID)
	case models.KindClientHistory:
		return s.history.pull(ctx, s.remote, log, ownerID)
	default:
		return PullReport{}, fmt.Errorf("unknown kind %q", kind)
	}
}

// Push upserts every unsynced record of the owner one by one. A record is
// marked synced right after its own upsert succeeds; failed records stay
// unsynced and do not stop the batch. An error means local storage failed.
func (s *SyncService) Push(ctx context.Context, kind models.Kind, ownerID string) (PushReport, error) {
	log := s.log.With("kind", string(kind), "owner", ownerID)
	switch kind {
	case models.KindNotification:
		return s.notifications.push(ctx, s.remote, log, ownerID)
	case models.KindClientHistory:
		return s.history.push(ctx, s.remote, log, ownerID)
	default:
		return PushReport{}, fmt.Errorf("unknown kind %q", kind)
	}
}

// RunJob is one full sync: pull then push, notifications before client history.
//
// A storage failure ends the job at once as a transient failure. A rejected
// credential ends it as a fatal failure. Any other pull failure skips only
// that kind's pull and makes the finished job transient.
func (s *SyncService) RunJob(ctx context.Context, ownerID string) scheduler.Outcome {
	if ownerID == "" {
		return scheduler.FatalFailure("no owner id configured")
	}

	var remoteFailures []string
	for _, kind := range models.Kinds {
		if _, err := s.Pull(ctx, kind, ownerID); err != nil {
			if outcome, stop := s.classify(ctx, kind, "pull", err); stop {
				return outcome
			}
			remoteFailures = append(remoteFailures, fmt.Sprintf("pull %s: %v", kind, err))
		} else if err := s.meta.SetTime(ctx, metadata.KindKey(metadata.KeyLastPull, string(kind)), s.now()); err != nil {
			return scheduler.TransientFailure(storageErr("record last pull", err).Error())
		}

		if _, err := s.Push(ctx, kind, ownerID); err != nil {
			if outcome, stop := s.classify(ctx, kind, "push", err); stop {
				return outcome
			}
			remoteFailures = append(remoteFailures, fmt.Sprintf("push %s: %v", kind, err))
		}
	}

	if len(remoteFailures) > 0 {
		return scheduler.TransientFailure(strings.Join(remoteFailures, "; "))
	}

	if err := s.meta.SetTime(ctx, metadata.KeyLastSync, s.now()); err != nil {
		return scheduler.TransientFailure(storageErr("record last sync", err).Error())
	}
	return scheduler.Success()
}

// LastSync returns when the last job succeeded, or the zero time.
func (s *SyncService) LastSync(ctx context.Context) (time.Time, error) {
	return s.meta.GetTime(ctx, metadata.KeyLastSync)
}

// LastPull returns when kind was last pulled without error, or the zero time.
func (s *SyncService) LastPull(ctx context.Context, kind models.Kind) (time.Time, error) {
	return s.meta.GetTime(ctx, metadata.KindKey(metadata.KeyLastPull, string(kind)))
}

func (s *SyncService) classify(ctx context.Context, kind models.Kind, step string, err error) (scheduler.Outcome, bool) {
	reason := fmt.Sprintf("%s %s: %v", step, kind, err)
	switch {
	case errors.Is(err, ErrStorage):
		s.log.Error(ctx, "sync aborted", "kind", string(kind), "step", step, "error", err)
		return scheduler.TransientFailure(reason), true
	case errors.Is(err, client.ErrUnauthorized):
		s.log.Error(ctx, "sync aborted", "kind", string(kind), "step", step, "error", err)
		return scheduler.FatalFailure(reason), true
	default:
		s.log.Warn(ctx, "sync step failed", "kind", string(kind), "step", step,
			"transient", client.IsTransient(err), "error", err)
		return scheduler.Outcome{}, false
	}
}

// uploadAttachments replaces local attachment paths with object keys.
// Storage being disabled leaves references untouched.
func uploadAttachments(ctx context.Context, u attachments.Uploader, ownerID string, item models.ClientHistoryItem) (models.ClientHistoryItem, error) {
	if len(item.Attachments) == 0 {
		return item, nil
	}
	out := item
	out.Attachments = make([]string, len(item.Attachments))
	for i, ref := range item.Attachments {
		out.Attachments[i] = ref
		local, ok := filex.LocalPath(ref)
		if !ok {
			continue
		}
		key, err := u.Upload(ctx, ownerID, local)
		if errors.Is(err, attachments.ErrDisabled) {
			continue
		}
		if err != nil {
			return item, fmt.Errorf("upload attachment %d: %w", i, err)
		}
		out.Attachments[i] = key
	}
	return out, nil
}

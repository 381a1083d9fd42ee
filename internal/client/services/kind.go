package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nipa/healthsync/internal/client/client"
	"github.com/nipa/healthsync/internal/client/models"
	"github.com/nipa/healthsync/internal/client/store"
	"github.com/nipa/healthsync/internal/logging"
)

// ErrStorage wraps every local cache failure surfaced by the engine.
var ErrStorage = errors.New("local storage failure")

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// PullReport summarizes one pull of one kind.
type PullReport struct {
	Fetched   int
	Skipped   int
	Upserted  int
	Pruned    int
	KeptLocal int
}

// PushReport summarizes one push of one kind.
type PushReport struct {
	Attempted int
	Pushed    int
	Failed    int
	// Superseded records were uploaded but edited, re-synced or deleted
	// locally before the upload was confirmed.
	Superseded int
}

// kindSync runs pull and push for one record kind.
type kindSync[T models.Record] struct {
	kind   models.Kind
	store  store.Store[T]
	decode models.Decoder[T]
	// prepare may rewrite a record before upload, e.g. to replace local
	// attachment paths with object keys.
	prepare func(ctx context.Context, ownerID string, rec T) (T, error)
}

func (k *kindSync[T]) pull(ctx context.Context, remote client.Remote, log logging.Logger, ownerID string) (PullReport, error) {
	var rep PullReport

	local, err := k.store.GetAllByOwner(ctx, ownerID)
	if err != nil {
		return rep, storageErr("read local", err)
	}

	docs, err := remote.Query(ctx, k.kind.Collection(), k.kind.OwnerField(), ownerID)
	if err != nil {
		return rep, fmt.Errorf("query %s: %w", k.kind.Collection(), err)
	}
	rep.Fetched = len(docs)

	remoteIDs := make(map[string]struct{}, len(docs))
	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := k.decode(doc)
		if err != nil {
			rep.Skipped++
			log.Warn(ctx, "skipping malformed document", "id", doc["id"], "error", err)
			continue
		}
		if rec.GetOwnerID() != ownerID {
			rep.Skipped++
			log.Warn(ctx, "skipping document of another owner", "id", rec.GetID(), "owner", rec.GetOwnerID())
			continue
		}
		remoteIDs[rec.GetID()] = struct{}{}
		records = append(records, models.WithSynced(rec, true))
	}

	if err := k.store.InsertOrReplace(ctx, records); err != nil {
		return rep, storageErr("merge", err)
	}
	rep.Upserted = len(records)

	var stale []string
	for _, rec := range local {
		if _, ok := remoteIDs[rec.GetID()]; ok {
			continue
		}
		if !rec.IsSynced() {
			rep.KeptLocal++
			continue
		}
		stale = append(stale, rec.GetID())
	}

	if len(stale) > 0 {
		if err := k.store.DeleteByIDs(ctx, stale); err != nil {
			return rep, storageErr("prune", err)
		}
	}
	rep.Pruned = len(stale)

	log.Info(ctx, "pull finished", "fetched", rep.Fetched, "upserted", rep.Upserted,
		"skipped", rep.Skipped, "pruned", rep.Pruned, "kept_local", rep.KeptLocal)
	return rep, nil
}

func (k *kindSync[T]) push(ctx context.Context, remote client.Remote, log logging.Logger, ownerID string) (PushReport, error) {
	var rep PushReport

	pending, err := k.store.GetUnsynced(ctx)
	if err != nil {
		return rep, storageErr("read unsynced", err)
	}

	for _, rec := range pending {
		if rec.GetOwnerID() != ownerID {
			continue
		}
		rep.Attempted++

		out := rec
		if k.prepare != nil {
			if out, err = k.prepare(ctx, ownerID, rec); err != nil {
				rep.Failed++
				log.Warn(ctx, "record not pushed", "id", rec.GetID(), "error", err)
				continue
			}
		}

		if err := remote.Upsert(ctx, k.kind.Collection(), out.GetID(), out.ToDocument()); err != nil {
			rep.Failed++
			log.Warn(ctx, "record not pushed", "id", rec.GetID(), "error", err)
			continue
		}

		confirmed, err := k.store.ConfirmSynced(ctx, out, rec)
		if err != nil {
			return rep, storageErr("confirm "+rec.GetID(), err)
		}
		if !confirmed {
			rep.Superseded++
			log.Info(ctx, "record changed locally during push, left for the next push", "id", rec.GetID())
			continue
		}
		rep.Pushed++
	}

	log.Info(ctx, "push finished", "attempted", rep.Attempted, "pushed", rep.Pushed, "failed", rep.Failed, "superseded", rep.Superseded)
	return rep, nil
}

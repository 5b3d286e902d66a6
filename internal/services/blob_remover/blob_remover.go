package services

import (
	"context"
	"fmt"
	"log/slog"

	"site_cms/internal/lib/logger/sl"
	"site_cms/internal/metrics"
	"site_cms/internal/repository"
	"site_cms/internal/storage/blobstore"
)

// BlobRemover deletes blobs whose documents are gone. Ids are journaled
// before the owning documents are deleted and leave the journal only once
// the blob store confirms them, so Sweep can finish interrupted removals.
type BlobRemover struct {
	log     *slog.Logger
	store   blobstore.BlobStore
	journal repository.RemovalJournal
}

func NewBlobRemover(log *slog.Logger, store blobstore.BlobStore, journal repository.RemovalJournal) *BlobRemover {
	return &BlobRemover{
		log:     log,
		store:   store,
		journal: journal,
	}
}

// Schedule journals ids for removal.
func (r *BlobRemover) Schedule(ctx context.Context, ids ...string) error {
	const op = "blob_remover.Schedule"

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	if err := r.journal.Add(ctx, ids...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Remove deletes ids from the blob store and acknowledges the confirmed ones.
// Failures are logged and left in the journal. It returns the number of
// confirmed ids.
func (r *BlobRemover) Remove(ctx context.Context, ids ...string) int {
	const op = "blob_remover.Remove"
	log := r.log.With(slog.String("op", op))

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0
	}

	// not bound to the request lifetime
	ctx = context.WithoutCancel(ctx)

	report, err := r.store.DeleteMany(ctx, ids)
	if err != nil {
		metrics.BlobDeletions.WithLabelValues(metrics.ResultFailed).Add(float64(len(ids)))
		log.Error("blob delete failed, ids stay journaled", slog.Int("count", len(ids)), sl.Err(err))
		return 0
	}

	for _, e := range report.Errors {
		log.Warn("blob delete batch reported an error", sl.Err(e))
	}

	for id, status := range report.Statuses {
		metrics.BlobDeletions.WithLabelValues(status).Inc()
		if status == blobstore.StatusNotFound {
			log.Warn("blob already gone", slog.String("blob_id", id))
		}
	}

	confirmed := report.Confirmed()
	if missing := len(ids) - len(confirmed); missing > 0 {
		metrics.BlobDeletions.WithLabelValues(metrics.ResultFailed).Add(float64(missing))
		log.Error("some blobs were not confirmed, ids stay journaled", slog.Int("count", missing))
	}

	if err := r.journal.Ack(ctx, confirmed...); err != nil {
		log.Error("failed to acknowledge removed blobs", sl.Err(err))
	}

	return len(confirmed)
}

// Sweep retries every journaled id. It returns how many were confirmed and
// how many are still pending.
func (r *BlobRemover) Sweep(ctx context.Context) (removed int, pending int, err error) {
	const op = "blob_remover.Sweep"
	log := r.log.With(slog.String("op", op))

	ids, err := r.journal.Pending(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	if len(ids) == 0 {
		log.Debug("nothing to sweep")
		return 0, 0, nil
	}

	for _, chunk := range blobstore.Chunks(ids, blobstore.MaxBatchDelete) {
		removed += r.Remove(ctx, chunk...)
	}

	pending = len(ids) - removed
	log.Info("sweep finished", slog.Int("removed", removed), slog.Int("pending", pending))

	return removed, pending, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

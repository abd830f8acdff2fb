package service

import (
	"context"
	"fmt"

	"UploadInbox/model"

	"go.uber.org/zap"
)

// InboxInspector cross-checks the objects in every configured storage
// location against the recorded upload attempts. It only reads and logs;
// repairing drift is an operational decision.
type InboxInspector struct {
	records   Persistence
	locations StorageLocations
	log       *zap.SugaredLogger
}

func NewInboxInspector(records Persistence, locations StorageLocations, log *zap.SugaredLogger) *InboxInspector {
	return &InboxInspector{records: records, locations: locations, log: log}
}

// CheckBuckets sweeps all configured storage locations. Every object must
// map to exactly one upload attempt; objects whose attempt settled in a
// terminal status other than accepted should have been cleaned up and are
// logged as stale.
func (i *InboxInspector) CheckBuckets(ctx context.Context) error {
	for _, alias := range i.locations.Aliases() {
		i.log.Debugw("checking storage location for stale objects", "storage_alias", alias)

		bucket, store, err := i.locations.ForAlias(alias)
		if err != nil {
			return err
		}

		objectIDs, err := store.ListObjectIDs(ctx, bucket)
		if err != nil {
			return err
		}

		for _, objectID := range objectIDs {
			attempts, err := i.records.FindAttemptsByObject(ctx, objectID)
			if err != nil {
				return err
			}
			if len(attempts) != 1 {
				outOfSync := &OutOfSyncError{
					Problem: fmt.Sprintf(
						"found %d upload attempts for object %s in storage %s, expected exactly one",
						len(attempts), objectID, alias,
					),
				}
				i.log.Errorw("object does not map to exactly one upload attempt",
					"object_id", objectID, "storage_alias", alias,
					"matches", len(attempts), "severity", "critical")
				return outOfSync
			}

			attempt := attempts[0]
			switch attempt.Status {
			case model.StatusCancelled, model.StatusFailed, model.StatusRejected:
				i.log.Errorw("stale object found",
					"object_id", objectID, "file_id", attempt.FileID,
					"bucket_id", bucket, "storage_alias", alias,
					"status", attempt.Status)
			}
		}
	}
	return nil
}

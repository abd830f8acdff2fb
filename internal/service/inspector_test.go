package service

import (
	"context"
	"testing"

	"UploadInbox/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestInspector(records *fakeRecords, store *fakeStore) (*InboxInspector, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	inspector := NewInboxInspector(records, newFakeLocations("inbox", "inbox-bucket", store), zap.New(core).Sugar())
	return inspector, logs
}

func TestCheckBucketsPassesCleanInbox(t *testing.T) {
	records := newFakeRecords()
	store := newFakeStore()
	addAttempt(records, "upload-1", "file-1", "object-1", model.StatusUploaded)
	store.objects["object-1"] = true

	inspector, logs := newTestInspector(records, store)

	require.NoError(t, inspector.CheckBuckets(context.Background()))
	assert.Empty(t, logs.FilterMessage("stale object found").All())
}

func TestCheckBucketsLogsStaleObjects(t *testing.T) {
	for _, status := range []model.UploadStatus{model.StatusCancelled, model.StatusFailed, model.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			records := newFakeRecords()
			store := newFakeStore()
			addAttempt(records, "upload-1", "file-1", "object-1", status)
			store.objects["object-1"] = true

			inspector, logs := newTestInspector(records, store)

			require.NoError(t, inspector.CheckBuckets(context.Background()))

			entries := logs.FilterMessage("stale object found").All()
			require.Len(t, entries, 1)
			fields := entries[0].ContextMap()
			assert.Equal(t, "object-1", fields["object_id"])
			assert.Equal(t, "file-1", fields["file_id"])
			assert.Equal(t, "inbox-bucket", fields["bucket_id"])
		})
	}
}

func TestCheckBucketsFailsOnOrphanedObject(t *testing.T) {
	records := newFakeRecords()
	store := newFakeStore()
	store.objects["object-1"] = true

	inspector, _ := newTestInspector(records, store)

	err := inspector.CheckBuckets(context.Background())

	var outOfSync *OutOfSyncError
	require.ErrorAs(t, err, &outOfSync)
	assert.Contains(t, outOfSync.Problem, "0 upload attempts")
}

func TestCheckBucketsFailsOnAmbiguousObject(t *testing.T) {
	records := newFakeRecords()
	store := newFakeStore()
	addAttempt(records, "upload-1", "file-1", "object-1", model.StatusUploaded)
	addAttempt(records, "upload-2", "file-2", "object-1", model.StatusUploaded)
	store.objects["object-1"] = true

	inspector, _ := newTestInspector(records, store)

	err := inspector.CheckBuckets(context.Background())

	var outOfSync *OutOfSyncError
	require.ErrorAs(t, err, &outOfSync)
	assert.Contains(t, outOfSync.Problem, "2 upload attempts")
}

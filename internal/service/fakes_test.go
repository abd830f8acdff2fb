package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"UploadInbox/internal/repo"
	"UploadInbox/internal/storage"
	"UploadInbox/model"
)

// fakeRecords is an in-memory Persistence with injectable failures.
type fakeRecords struct {
	files    map[string]model.FileMetadata
	attempts map[string]model.UploadAttempt

	insertAttemptErr error
	updateFileErr    error
	updateAttemptErr error
	deleteAttemptErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		files:    make(map[string]model.FileMetadata),
		attempts: make(map[string]model.UploadAttempt),
	}
}

func (r *fakeRecords) GetFile(_ context.Context, fileID string) (model.FileMetadata, error) {
	file, ok := r.files[fileID]
	if !ok {
		return model.FileMetadata{}, repo.ErrNotFound
	}
	return file, nil
}

func (r *fakeRecords) InsertFile(_ context.Context, file model.FileMetadata) error {
	if _, ok := r.files[file.FileID]; ok {
		return repo.ErrAlreadyExists
	}
	r.files[file.FileID] = file
	return nil
}

func (r *fakeRecords) UpdateFile(_ context.Context, file model.FileMetadata) error {
	if r.updateFileErr != nil {
		return r.updateFileErr
	}
	if _, ok := r.files[file.FileID]; !ok {
		return repo.ErrNotFound
	}
	r.files[file.FileID] = file
	return nil
}

func (r *fakeRecords) DeleteFile(_ context.Context, fileID string) error {
	if _, ok := r.files[fileID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.files, fileID)
	return nil
}

func (r *fakeRecords) GetAttempt(_ context.Context, uploadID string) (model.UploadAttempt, error) {
	attempt, ok := r.attempts[uploadID]
	if !ok {
		return model.UploadAttempt{}, repo.ErrNotFound
	}
	return attempt, nil
}

func (r *fakeRecords) InsertAttempt(_ context.Context, attempt model.UploadAttempt) error {
	if r.insertAttemptErr != nil {
		return r.insertAttemptErr
	}
	if _, ok := r.attempts[attempt.UploadID]; ok {
		return repo.ErrAlreadyExists
	}
	r.attempts[attempt.UploadID] = attempt
	return nil
}

func (r *fakeRecords) UpdateAttempt(_ context.Context, attempt model.UploadAttempt) error {
	if r.updateAttemptErr != nil {
		return r.updateAttemptErr
	}
	existing, ok := r.attempts[attempt.UploadID]
	if !ok {
		return repo.ErrNotFound
	}
	existing.Status = attempt.Status
	existing.CompletionDate = attempt.CompletionDate
	r.attempts[attempt.UploadID] = existing
	return nil
}

func (r *fakeRecords) DeleteAttempt(_ context.Context, uploadID string) error {
	if r.deleteAttemptErr != nil {
		return r.deleteAttemptErr
	}
	if _, ok := r.attempts[uploadID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.attempts, uploadID)
	return nil
}

func (r *fakeRecords) FindAttemptsByFile(_ context.Context, fileID string) ([]model.UploadAttempt, error) {
	var out []model.UploadAttempt
	for _, attempt := range r.attempts {
		if attempt.FileID == fileID {
			out = append(out, attempt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadID < out[j].UploadID })
	return out, nil
}

func (r *fakeRecords) FindAttemptsByObject(_ context.Context, objectID string) ([]model.UploadAttempt, error) {
	var out []model.UploadAttempt
	for _, attempt := range r.attempts {
		if attempt.ObjectID == objectID {
			out = append(out, attempt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadID < out[j].UploadID })
	return out, nil
}

// fakeStore is an in-memory ObjectStore tracking in-flight multipart uploads
// and finalized objects.
type fakeStore struct {
	uploads map[string]string
	objects map[string]bool

	nextUploadID string

	initErr     error
	partURLErr  error
	completeErr error
	abortErr    error
	removeErr   error

	aborted []string
	removed []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		uploads:      make(map[string]string),
		objects:      make(map[string]bool),
		nextUploadID: "upload-1",
	}
}

func (s *fakeStore) InitMultipartUpload(_ context.Context, _, object string) (string, error) {
	if s.initErr != nil {
		return "", s.initErr
	}
	if _, ok := s.uploads[object]; ok {
		return "", storage.ErrUploadAlreadyExists
	}
	s.uploads[object] = s.nextUploadID
	return s.nextUploadID, nil
}

func (s *fakeStore) PartUploadURL(_ context.Context, bucket, object, uploadID string, partNumber int, _ time.Duration) (string, error) {
	if s.partURLErr != nil {
		return "", s.partURLErr
	}
	if s.uploads[object] != uploadID {
		return "", storage.ErrUploadNotFound
	}
	return fmt.Sprintf("https://storage.test/%s/%s?uploadId=%s&partNumber=%d", bucket, object, uploadID, partNumber), nil
}

func (s *fakeStore) CompleteMultipartUpload(_ context.Context, _, object, uploadID string) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	if s.uploads[object] != uploadID {
		return &storage.ConfirmError{UploadID: uploadID, Reason: "no such upload"}
	}
	delete(s.uploads, object)
	s.objects[object] = true
	return nil
}

func (s *fakeStore) AbortMultipartUpload(_ context.Context, _, object, uploadID string) error {
	if s.abortErr != nil {
		return s.abortErr
	}
	if s.uploads[object] != uploadID {
		return storage.ErrUploadNotFound
	}
	delete(s.uploads, object)
	s.aborted = append(s.aborted, uploadID)
	return nil
}

func (s *fakeStore) RemoveObject(_ context.Context, _, object string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	if !s.objects[object] {
		return storage.ErrObjectNotFound
	}
	delete(s.objects, object)
	s.removed = append(s.removed, object)
	return nil
}

func (s *fakeStore) ObjectExists(_ context.Context, _, object string) (bool, error) {
	return s.objects[object], nil
}

func (s *fakeStore) ListObjectIDs(_ context.Context, _ string) ([]string, error) {
	out := make([]string, 0, len(s.objects))
	for object := range s.objects {
		out = append(out, object)
	}
	sort.Strings(out)
	return out, nil
}

// fakeLocations resolves aliases against a fixed map.
type fakeLocations struct {
	stores  map[string]*fakeStore
	buckets map[string]string
}

func newFakeLocations(alias, bucket string, store *fakeStore) *fakeLocations {
	return &fakeLocations{
		stores:  map[string]*fakeStore{alias: store},
		buckets: map[string]string{alias: bucket},
	}
}

func (l *fakeLocations) ForAlias(alias string) (string, storage.ObjectStore, error) {
	store, ok := l.stores[alias]
	if !ok {
		return "", nil, storage.ErrUnknownAlias
	}
	return l.buckets[alias], store, nil
}

func (l *fakeLocations) Aliases() []string {
	out := make([]string, 0, len(l.stores))
	for alias := range l.stores {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

type publishedUpload struct {
	file    model.FileMetadata
	attempt model.UploadAttempt
	bucket  string
}

// fakePublisher records every published event.
type fakePublisher struct {
	received []publishedUpload
	deleted  []string

	publishErr error
}

func (p *fakePublisher) PublishUploadReceived(_ context.Context, file model.FileMetadata, attempt model.UploadAttempt, bucketID string) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.received = append(p.received, publishedUpload{file: file, attempt: attempt, bucket: bucketID})
	return nil
}

func (p *fakePublisher) PublishDeletionSuccessful(_ context.Context, fileID string) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.deleted = append(p.deleted, fileID)
	return nil
}

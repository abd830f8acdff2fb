package storage

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinioStore implements ObjectStore with a MinIO client.
type MinioStore struct {
	client *minio.Client
	core   *minio.Core
}

// NewMinioStore builds an ObjectStore from a MinIO client.
func NewMinioStore(client *minio.Client) *MinioStore {
	return &MinioStore{
		client: client,
		core:   &minio.Core{Client: client},
	}
}

func errCode(err error) string {
	return minio.ToErrorResponse(err).Code
}

// InitMultipartUpload starts a multipart upload for the object and returns
// the storage-assigned upload ID. Fails with ErrUploadAlreadyExists if an
// upload for the object is already in flight.
func (s *MinioStore) InitMultipartUpload(ctx context.Context, bucket, object string) (string, error) {
	existing, err := s.core.ListMultipartUploads(ctx, bucket, object, "", "", "", 1)
	if err != nil {
		return "", err
	}
	for _, upload := range existing.Uploads {
		if upload.Key == object {
			return "", ErrUploadAlreadyExists
		}
	}
	return s.core.NewMultipartUpload(ctx, bucket, object, minio.PutObjectOptions{})
}

// PartUploadURL presigns a PUT URL for one part of the multipart upload.
func (s *MinioStore) PartUploadURL(ctx context.Context, bucket, object, uploadID string, partNumber int, expiry time.Duration) (string, error) {
	if _, err := s.core.ListObjectParts(ctx, bucket, object, uploadID, 0, 1); err != nil {
		if errCode(err) == "NoSuchUpload" {
			return "", ErrUploadNotFound
		}
		return "", err
	}

	params := url.Values{}
	params.Set("uploadId", uploadID)
	params.Set("partNumber", strconv.Itoa(partNumber))
	signed, err := s.client.Presign(ctx, "PUT", bucket, object, expiry, params)
	if err != nil {
		return "", err
	}
	return signed.String(), nil
}

// CompleteMultipartUpload finalizes the multipart upload from its uploaded
// parts.
func (s *MinioStore) CompleteMultipartUpload(ctx context.Context, bucket, object, uploadID string) error {
	var parts []minio.CompletePart
	marker := 0
	for {
		result, err := s.core.ListObjectParts(ctx, bucket, object, uploadID, marker, 1000)
		if err != nil {
			if errCode(err) == "NoSuchUpload" {
				return ErrUploadNotFound
			}
			return err
		}
		for _, part := range result.ObjectParts {
			parts = append(parts, minio.CompletePart{
				PartNumber: part.PartNumber,
				ETag:       part.ETag,
			})
		}
		if !result.IsTruncated {
			break
		}
		marker = result.NextPartNumberMarker
	}

	_, err := s.core.CompleteMultipartUpload(ctx, bucket, object, uploadID, parts, minio.PutObjectOptions{})
	if err != nil {
		return &ConfirmError{UploadID: uploadID, Reason: err.Error()}
	}
	return nil
}

// AbortMultipartUpload aborts the multipart upload. Fails with
// ErrUploadNotFound if no such upload exists.
func (s *MinioStore) AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error {
	err := s.core.AbortMultipartUpload(ctx, bucket, object, uploadID)
	if err != nil && errCode(err) == "NoSuchUpload" {
		return ErrUploadNotFound
	}
	return err
}

// RemoveObject deletes the object. Fails with ErrObjectNotFound if the
// object does not exist.
func (s *MinioStore) RemoveObject(ctx context.Context, bucket, object string) error {
	exists, err := s.ObjectExists(ctx, bucket, object)
	if err != nil {
		return err
	}
	if !exists {
		return ErrObjectNotFound
	}
	return s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{})
}

// ObjectExists reports whether the object exists.
func (s *MinioStore) ObjectExists(ctx context.Context, bucket, object string) (bool, error) {
	_, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		if errCode(err) == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListObjectIDs returns the keys of all objects in the bucket.
func (s *MinioStore) ListObjectIDs(ctx context.Context, bucket string) ([]string, error) {
	var ids []string
	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, object.Err
		}
		ids = append(ids, object.Key)
	}
	return ids, nil
}

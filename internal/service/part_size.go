package service

// S3 limits for multipart uploads.
const (
	defaultPartSize = int64(16 * 1024 * 1024)
	maxPartSize     = int64(5 * 1024 * 1024 * 1024)
	maxPartNumber   = int64(10000)
)

// CalculatePartSize returns the recommended part size in bytes for a file of
// the given size: the smallest power-of-two multiple of the default part
// size that keeps the part count within the storage limit.
func CalculatePartSize(fileSize int64) int64 {
	minPartSize := fileSize / maxPartNumber
	if fileSize%maxPartNumber != 0 {
		minPartSize++
	}

	partSize := defaultPartSize
	for partSize < minPartSize && partSize < maxPartSize {
		partSize *= 2
	}
	if partSize > maxPartSize {
		partSize = maxPartSize
	}
	return partSize
}

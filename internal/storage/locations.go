package storage

import (
	"errors"
	"fmt"

	"UploadInbox/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrUnknownAlias is returned when no location is configured for an alias.
var ErrUnknownAlias = errors.New("unknown storage alias")

type location struct {
	bucket string
	store  ObjectStore
}

// Locations resolves storage aliases to their bucket and client. The
// registry is built once at startup and read-only afterwards.
type Locations struct {
	byAlias map[string]location
	aliases []string
}

// NewLocations builds one MinIO client per configured storage location.
func NewLocations(cfg config.StorageConfig) (*Locations, error) {
	locations := &Locations{byAlias: make(map[string]location)}

	for _, lc := range cfg.Locations {
		client, err := minio.New(
			fmt.Sprintf("%s:%s", lc.Host, lc.Port),
			&minio.Options{
				Creds:  credentials.NewStaticV4(lc.Username, lc.Password, ""),
				Secure: lc.UseSSL,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("storage location %s: %w", lc.Alias, err)
		}
		locations.byAlias[lc.Alias] = location{
			bucket: lc.Bucket,
			store:  NewMinioStore(client),
		}
		locations.aliases = append(locations.aliases, lc.Alias)
	}

	return locations, nil
}

// ForAlias returns the bucket and client for a configured alias.
func (l *Locations) ForAlias(alias string) (string, ObjectStore, error) {
	loc, ok := l.byAlias[alias]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownAlias, alias)
	}
	return loc.bucket, loc.store, nil
}

// Aliases lists all configured storage aliases.
func (l *Locations) Aliases() []string {
	return l.aliases
}

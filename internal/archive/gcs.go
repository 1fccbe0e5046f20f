// Package archive stores raw webhook payloads in Cloud Storage.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

type Archiver interface {
	Archive(ctx context.Context, provider, id string, payload []byte) (string, error)
}

type GCSArchiver struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

// NewGCSArchiver uses application default credentials unless credentialsFile is set.
func NewGCSArchiver(ctx context.Context, bucket, credentialsFile string) (*GCSArchiver, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	return &GCSArchiver{client: client, bucket: bucket, now: time.Now}, nil
}

// Archive writes payload to webhooks/<provider>/<yyyy>/<mm>/<dd>/<id>.json and
// returns the gs:// URI.
func (a *GCSArchiver) Archive(ctx context.Context, provider, id string, payload []byte) (string, error) {
	objectPath := ObjectPath(provider, id, a.now())
	w := a.client.Bucket(a.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = "application/json"
	w.Metadata = map[string]string{"provider": provider}
	if _, err := w.Write(payload); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", a.bucket, objectPath), nil
}

func (a *GCSArchiver) Close() error {
	return a.client.Close()
}

func ObjectPath(provider, id string, at time.Time) string {
	if id == "" {
		id = uuid.NewString()
	}
	id = strings.NewReplacer("/", "_", " ", "_").Replace(id)
	at = at.UTC()
	return path.Join("webhooks", provider, at.Format("2006"), at.Format("01"), at.Format("02"), id+".json")
}

type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, string, string, []byte) (string, error) { return "", nil }

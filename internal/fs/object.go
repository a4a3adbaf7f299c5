package fs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// SchemeS3 is the URL scheme served by ObjectIO.
const SchemeS3 = "s3"

// ObjectStore is the slice of an S3 client ObjectIO needs.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, minio.ObjectInfo, error)
	Put(ctx context.Context, bucket, key string, data []byte) error
	Stat(ctx context.Context, bucket, key string) (minio.ObjectInfo, error)
}

// ObjectConfig holds connection settings for an S3 compatible endpoint.
type ObjectConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"-"`
	Region    string `yaml:"region,omitempty" json:"region,omitempty"`
	Secure    bool   `yaml:"secure" json:"secure"`
	Bucket    string `yaml:"bucket" json:"bucket"`
}

type minioStore struct {
	client *minio.Client
}

// NewMinioStore connects an ObjectStore to the endpoint in cfg.
func NewMinioStore(cfg ObjectConfig) (ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: new client %q: %w", cfg.Endpoint, err)
	}
	return &minioStore{client: client}, nil
}

func (m *minioStore) Get(ctx context.Context, bucket, key string) ([]byte, minio.ObjectInfo, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}
	defer func() {
		_ = obj.Close()
	}()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}
	info, err := obj.Stat()
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}
	return data, info, nil
}

func (m *minioStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	return err
}

func (m *minioStore) Stat(ctx context.Context, bucket, key string) (minio.ObjectInfo, error) {
	return m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
}

// ObjectIO implements CSpellIO over S3 compatible object storage. Addresses
// are s3://bucket/key URLs; plain paths name keys in the default bucket.
type ObjectIO struct {
	store  ObjectStore
	bucket string
	log    *slog.Logger
}

// NewObjectIO creates an ObjectIO over store. bucket is used for plain paths.
func NewObjectIO(store ObjectStore, bucket string, opts ...Option) *ObjectIO {
	s := newSettings(opts)
	return &ObjectIO{store: store, bucket: bucket, log: s.log.With("backend", "object")}
}

func (o *ObjectIO) toURL(addr Address) (*url.URL, error) {
	if p, ok := addr.(Path); ok && p != "" && !IsURLLike(string(p)) {
		if o.bucket == "" {
			return nil, &OpError{Op: OpToURL, URL: string(p), Kind: ErrInvalidAddress, Err: fmt.Errorf("no default bucket for path")}
		}
		key := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(string(p), "\\", "/")), "/")
		return &url.URL{Scheme: SchemeS3, Host: o.bucket, Path: "/" + key}, nil
	}
	return ToURL(addr, "/")
}

func (o *ObjectIO) locate(op string, addr Address) (bucket, key string, u *url.URL, err error) {
	u, err = o.toURL(addr)
	if err != nil {
		return "", "", nil, withOp(op, err)
	}
	if u.Scheme != SchemeS3 {
		return "", "", nil, &OpError{Op: op, URL: u.String(), Kind: ErrUnsupportedScheme, Err: fmt.Errorf("scheme %q", u.Scheme)}
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", nil, &OpError{Op: op, URL: u.String(), Kind: ErrInvalidAddress, Err: fmt.Errorf("want s3://bucket/key")}
	}
	return u.Host, key, u, nil
}

// objectError maps an S3 error response onto a failure kind.
func objectError(op string, u *url.URL, err error) error {
	resp := minio.ToErrorResponse(err)
	kind := ErrIO
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound:
		kind = ErrNotFound
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
		kind = ErrPermission
	case resp.Code == "InvalidBucketName" || resp.Code == "XMinioInvalidObjectName":
		kind = ErrInvalidAddress
	}
	return &OpError{Op: op, URL: u.String(), Kind: kind, Err: fmt.Errorf("minio: %w", err)}
}

func objectStats(info minio.ObjectInfo) Stats {
	return Stats{
		Size:    info.Size,
		ModTime: info.LastModified,
		Kind:    KindFile,
		ETag:    strings.Trim(info.ETag, `"`),
	}
}

// ReadFile downloads and decodes the object at addr.
func (o *ObjectIO) ReadFile(ctx context.Context, addr Address) (TextFileResource, error) {
	if err := live(ctx); err != nil {
		return TextFileResource{}, err
	}
	return o.read(ctx, OpReadFile, addr)
}

// ReadFileSync is ReadFile without a context.
func (o *ObjectIO) ReadFileSync(addr Address) (TextFileResource, error) {
	return o.read(context.Background(), OpReadFileSync, addr)
}

func (o *ObjectIO) read(ctx context.Context, op string, addr Address) (TextFileResource, error) {
	bucket, key, u, err := o.locate(op, addr)
	if err != nil {
		return TextFileResource{}, err
	}
	data, info, err := o.store.Get(ctx, bucket, key)
	if err != nil {
		return TextFileResource{}, objectError(op, u, err)
	}
	res, err := newResource(u, data, objectStats(info))
	if err != nil {
		return TextFileResource{}, &OpError{Op: op, URL: u.String(), Kind: ErrIO, Err: err}
	}
	o.log.Debug("read", "bucket", bucket, "key", key, "size", info.Size)
	return res, nil
}

// WriteFile uploads content to addr.
func (o *ObjectIO) WriteFile(ctx context.Context, addr Address, content string) error {
	if err := live(ctx); err != nil {
		return err
	}
	bucket, key, u, err := o.locate(OpWriteFile, addr)
	if err != nil {
		return err
	}
	if err := o.store.Put(ctx, bucket, key, []byte(content)); err != nil {
		return objectError(OpWriteFile, u, err)
	}
	o.log.Debug("write", "bucket", bucket, "key", key, "size", len(content))
	return nil
}

// GetStat returns object metadata, including its ETag.
func (o *ObjectIO) GetStat(ctx context.Context, addr Address) (Stats, error) {
	if err := live(ctx); err != nil {
		return Stats{}, err
	}
	return o.stat(ctx, OpGetStat, addr)
}

// GetStatSync is GetStat without a context.
func (o *ObjectIO) GetStatSync(addr Address) (Stats, error) {
	return o.stat(context.Background(), OpGetStatSync, addr)
}

func (o *ObjectIO) stat(ctx context.Context, op string, addr Address) (Stats, error) {
	bucket, key, u, err := o.locate(op, addr)
	if err != nil {
		return Stats{}, err
	}
	info, err := o.store.Stat(ctx, bucket, key)
	if err != nil {
		return Stats{}, objectError(op, u, err)
	}
	return objectStats(info), nil
}

// CompareStats delegates to the shared comparator.
func (o *ObjectIO) CompareStats(left, right Stats) int {
	return CompareStats(left, right)
}

// ToURL normalizes addr into an s3 URL.
func (o *ObjectIO) ToURL(addr Address) (*url.URL, error) {
	return o.toURL(addr)
}

// URIBasename returns the final segment of addr.
func (o *ObjectIO) URIBasename(addr Address) (string, error) {
	u, err := o.toURL(addr)
	if err != nil {
		return "", withOp(OpURIBasename, err)
	}
	return URLBasename(u), nil
}

// URIDirname returns the parent of addr.
func (o *ObjectIO) URIDirname(addr Address) (*url.URL, error) {
	u, err := o.toURL(addr)
	if err != nil {
		return nil, withOp(OpURIDirname, err)
	}
	return URLDirname(u), nil
}

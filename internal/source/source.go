// Package source opens pipeline inputs and outputs addressed by URI: local
// paths, "-" for stdin/stdout, s3://bucket/key and gs://bucket/object. A
// ".gz" suffix is compressed or decompressed transparently.
package source

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/viper"
)

// Scheme identifies where a URI lives.
type Scheme string

const (
	SchemeFile  Scheme = "file"
	SchemeStdio Scheme = "stdio"
	SchemeS3    Scheme = "s3"
	SchemeGCS   Scheme = "gs"
)

// Location is a parsed URI.
type Location struct {
	Scheme Scheme
	// Bucket and Key are set for object stores; Key holds the local path
	// for files.
	Bucket string
	Key    string
	Gzip   bool
}

// ParseURI classifies uri.
func ParseURI(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Location{}, fmt.Errorf("empty path")
	}
	if uri == "-" {
		return Location{Scheme: SchemeStdio}, nil
	}
	loc := Location{Gzip: strings.HasSuffix(uri, ".gz")}
	for _, s := range []Scheme{SchemeS3, SchemeGCS} {
		prefix := string(s) + "://"
		if !strings.HasPrefix(uri, prefix) {
			continue
		}
		bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, prefix), "/")
		if !ok || bucket == "" || key == "" {
			return Location{}, fmt.Errorf("invalid %s uri %q: expected %sbucket/key", s, uri, prefix)
		}
		loc.Scheme, loc.Bucket, loc.Key = s, bucket, key
		return loc, nil
	}
	loc.Scheme = SchemeFile
	loc.Key = strings.TrimPrefix(uri, "file://")
	return loc, nil
}

// Exists reports whether uri names an existing local file. Remote URIs are
// assumed to exist.
func Exists(uri string) bool {
	loc, err := ParseURI(uri)
	if err != nil {
		return false
	}
	switch loc.Scheme {
	case SchemeS3, SchemeGCS:
		return true
	case SchemeFile:
		info, err := os.Stat(loc.Key)
		return err == nil && !info.IsDir()
	}
	return false
}

// Options carries object-store credentials.
type Options struct {
	S3Profile         string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3SessionToken    string

	GCSCredentialsFile string
	GCSAccessToken     string
}

// OptionsFromConfig resolves credentials from the config file, falling back
// to the standard environment variables.
func OptionsFromConfig() Options {
	opts := Options{
		S3Profile:          strings.TrimSpace(viper.GetString("source.s3.profile")),
		S3Region:           strings.TrimSpace(viper.GetString("source.s3.region")),
		S3AccessKeyID:      viper.GetString("source.s3.access_key_id"),
		S3SecretAccessKey:  viper.GetString("source.s3.secret_access_key"),
		S3SessionToken:     viper.GetString("source.s3.session_token"),
		GCSCredentialsFile: strings.TrimSpace(viper.GetString("source.gcs.credentials_file")),
		GCSAccessToken:     viper.GetString("source.gcs.access_token"),
	}
	if opts.S3Profile == "" {
		opts.S3Profile = strings.TrimSpace(os.Getenv("AWS_PROFILE"))
	}
	if opts.GCSCredentialsFile == "" {
		opts.GCSCredentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return opts
}

// Opener opens URIs, creating object-store clients lazily on first use.
type Opener struct {
	opts Options

	mu  sync.Mutex
	s3  *s3.Client
	gcs *storage.Client
}

// NewOpener returns an Opener using opts for remote stores.
func NewOpener(opts Options) *Opener {
	return &Opener{opts: opts}
}

// Open returns a reader for uri.
func (o *Opener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	var rc io.ReadCloser
	switch loc.Scheme {
	case SchemeStdio:
		rc = io.NopCloser(os.Stdin)
	case SchemeFile:
		f, err := os.Open(loc.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", uri, err)
		}
		rc = f
	case SchemeS3:
		rc, err = o.openS3(ctx, loc)
	case SchemeGCS:
		rc, err = o.openGCS(ctx, loc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", uri, err)
	}

	if !loc.Gzip {
		return rc, nil
	}
	gz, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("failed to read gzip stream %s: %w", uri, err)
	}
	return &gzipReadCloser{Reader: gz, under: rc}, nil
}

// Create returns a writer for uri. Object-store writes become visible once
// the writer is closed.
func (o *Opener) Create(ctx context.Context, uri string) (io.WriteCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	var wc io.WriteCloser
	switch loc.Scheme {
	case SchemeStdio:
		wc = nopWriteCloser{os.Stdout}
	case SchemeFile:
		if dir := filepath.Dir(loc.Key); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(loc.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", uri, err)
		}
		wc = f
	case SchemeS3:
		wc, err = o.createS3(ctx, loc)
	case SchemeGCS:
		wc, err = o.createGCS(ctx, loc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", uri, err)
	}

	if !loc.Gzip {
		return wc, nil
	}
	return &gzipWriteCloser{Writer: gzip.NewWriter(wc), under: wc}, nil
}

// Close releases object-store clients.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gcs != nil {
		err := o.gcs.Close()
		o.gcs = nil
		return err
	}
	return nil
}

type gzipReadCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g *gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if cerr := g.under.Close(); err == nil {
		err = cerr
	}
	return err
}

type gzipWriteCloser struct {
	*gzip.Writer
	under io.Closer
}

func (g *gzipWriteCloser) Close() error {
	err := g.Writer.Close()
	if cerr := g.under.Close(); err == nil {
		err = cerr
	}
	return err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

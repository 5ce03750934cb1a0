package source

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    Location
		wantErr bool
	}{
		{"-", Location{Scheme: SchemeStdio}, false},
		{"data/assoc.tsv", Location{Scheme: SchemeFile, Key: "data/assoc.tsv"}, false},
		{"file:///tmp/a.tsv.gz", Location{Scheme: SchemeFile, Key: "/tmp/a.tsv.gz", Gzip: true}, false},
		{"s3://bucket/cath/assoc.tsv", Location{Scheme: SchemeS3, Bucket: "bucket", Key: "cath/assoc.tsv"}, false},
		{"gs://bucket/x.gz", Location{Scheme: SchemeGCS, Bucket: "bucket", Key: "x.gz", Gzip: true}, false},
		{"s3://bucket", Location{}, true},
		{"gs:///key", Location{}, true},
		{"", Location{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := ParseURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpener_LocalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	o := NewOpener(Options{})
	defer o.Close()
	ctx := context.Background()

	for _, name := range []string{"plain/out.tsv", "zipped/out.tsv.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			w, err := o.Create(ctx, path)
			require.NoError(t, err)
			_, err = io.WriteString(w, "F1\tD1\t2.0\n")
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := o.Open(ctx, path)
			require.NoError(t, err)
			defer r.Close()
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, "F1\tD1\t2.0\n", string(data))
			assert.True(t, Exists(path))
		})
	}
}

func TestOpener_MissingFile(t *testing.T) {
	_, err := NewOpener(Options{}).Open(context.Background(), filepath.Join(t.TempDir(), "nope.tsv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, Exists("P12345|P67890"))
}

func TestFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assoc.tsv")
	require.NoError(t, os.WriteFile(path, []byte("F1\tD1\t2.0\n"), 0o644))

	got, err := NewOpener(Options{}).Fingerprint(context.Background(), path)
	require.NoError(t, err)

	sum := blake2b.Sum256([]byte("F1\tD1\t2.0\n"))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

package source

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

func (o *Opener) gcsClient(ctx context.Context) (*storage.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gcs != nil {
		return o.gcs, nil
	}

	var clientOpts []option.ClientOption
	switch {
	case o.opts.GCSAccessToken != "":
		clientOpts = append(clientOpts, option.WithTokenSource(
			oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.opts.GCSAccessToken})))
	case o.opts.GCSCredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(o.opts.GCSCredentialsFile))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create storage client: %w", err)
	}
	o.gcs = client
	return client, nil
}

func (o *Opener) openGCS(ctx context.Context, loc Location) (io.ReadCloser, error) {
	client, err := o.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
}

func (o *Opener) createGCS(ctx context.Context, loc Location) (io.WriteCloser, error) {
	client, err := o.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Bucket(loc.Bucket).Object(loc.Key).NewWriter(ctx), nil
}

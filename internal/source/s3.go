package source

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func (o *Opener) s3Client(ctx context.Context) (*s3.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.s3 != nil {
		return o.s3, nil
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.opts.S3Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.opts.S3Profile))
	}
	if o.opts.S3Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.opts.S3Region))
	}
	if o.opts.S3AccessKeyID != "" && o.opts.S3SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.opts.S3AccessKeyID,
			o.opts.S3SecretAccessKey,
			o.opts.S3SessionToken,
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	o.s3 = s3.NewFromConfig(cfg)
	return o.s3, nil
}

func (o *Opener) openS3(ctx context.Context, loc Location) (io.ReadCloser, error) {
	client, err := o.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (o *Opener) createS3(ctx context.Context, loc Location) (io.WriteCloser, error) {
	client, err := o.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	return &s3Writer{ctx: ctx, client: client, loc: loc}, nil
}

// s3Writer buffers the object and uploads it on Close.
type s3Writer struct {
	ctx    context.Context
	client *s3.Client
	loc    Location
	buf    bytes.Buffer
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *s3Writer) Close() error {
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.loc.Bucket),
		Key:    aws.String(w.loc.Key),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", w.loc.Bucket, w.loc.Key, err)
	}
	return nil
}

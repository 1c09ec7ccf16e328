// Package source fetches resume documents referenced on the command line.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultMaxBytes = 20 << 20

// ObjectGetter is the part of the S3 client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads a document from a local path, file://, http(s):// or
// s3://bucket/key reference.
type Loader struct {
	HTTPClient *http.Client
	// S3 is created from the default AWS config chain on first use when nil.
	S3       ObjectGetter
	MaxBytes int64
}

func NewLoader() *Loader {
	return &Loader{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		MaxBytes:   defaultMaxBytes,
	}
}

func (l *Loader) Load(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("resume reference is empty")
	}

	switch {
	case strings.HasPrefix(ref, "s3://"):
		return l.loadS3(ctx, ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.loadHTTP(ctx, ref)
	default:
		return l.loadFile(strings.TrimPrefix(ref, "file://"))
	}
}

func (l *Loader) loadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open resume file: %w", err)
	}
	defer f.Close()

	return l.readAll(f, path)
}

func (l *Loader) loadHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download resume: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download resume: bad status: %s", resp.Status)
	}

	return l.readAll(resp.Body, url)
}

func (l *Loader) loadS3(ctx context.Context, ref string) ([]byte, error) {
	path := strings.TrimPrefix(ref, "s3://")
	slash := strings.Index(path, "/")
	if slash <= 0 || slash == len(path)-1 {
		return nil, fmt.Errorf("invalid s3 url: %s", ref)
	}
	bucket, key := path[:slash], path[slash+1:]

	if l.S3 == nil {
		cfg, err := awscfg.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		l.S3 = s3.NewFromConfig(cfg)
	}

	out, err := l.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3 object: %w", err)
	}
	defer out.Body.Close()

	return l.readAll(out.Body, ref)
}

func (l *Loader) readAll(r io.Reader, name string) ([]byte, error) {
	limit := l.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}

	buf := new(bytes.Buffer)
	n, err := io.Copy(buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if n > limit {
		return nil, fmt.Errorf("%s is larger than %d bytes", name, limit)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s is empty", name)
	}

	return buf.Bytes(), nil
}

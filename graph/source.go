package graph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang/snappy"
)

// ObjectGetter is the subset of the S3 client used to read snapshots.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads snapshots from local files, http(s) URLs or S3.
type Loader struct {
	httpClient *http.Client
	s3         ObjectGetter
}

// NewLoader creates a Loader. A nil S3 client is created on first use from the
// default AWS credential chain.
func NewLoader(httpClient *http.Client, s3Client ObjectGetter) *Loader {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Loader{httpClient: httpClient, s3: s3Client}
}

// NewS3Client builds an S3 client from the default AWS configuration.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Load fetches and parses a snapshot. See Fetch for supported locations.
func (l *Loader) Load(ctx context.Context, location string) (*Graph, error) {
	data, err := l.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}

// Fetch returns the raw, decompressed snapshot bytes. Locations starting with
// http:// or https:// are downloaded, s3://bucket/key is read from S3 and
// anything else is a local path. A ".sz" suffix is snappy-decoded.
func (l *Loader) Fetch(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("empty snapshot location")
	}
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		data, err = l.fetchHTTP(ctx, location)
	case strings.HasPrefix(location, "s3://"):
		data, err = l.fetchS3(ctx, location)
	default:
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(location, ".sz") {
		decoded, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", location, err)
		}
		data = decoded
	}
	return data, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func (l *Loader) fetchS3(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := splitS3Location(location)
	if err != nil {
		return nil, err
	}
	if l.s3 == nil {
		client, err := NewS3Client(ctx, "")
		if err != nil {
			return nil, err
		}
		l.s3 = client
	}
	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	defer func() { _ = out.Body.Close() }()
	return io.ReadAll(out.Body)
}

func splitS3Location(location string) (string, string, error) {
	rest := strings.TrimPrefix(location, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q, want s3://bucket/key", location)
	}
	return bucket, key, nil
}

// CompressSnapshot snappy-encodes snapshot bytes for storage under a ".sz" name.
func CompressSnapshot(data []byte) []byte {
	return snappy.Encode(nil, data)
}

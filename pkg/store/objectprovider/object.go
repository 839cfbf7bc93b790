// Package objectprovider stores each document as one JSON object in an
// S3-compatible bucket, keyed by <prefix>/<collection>/<id>.json. Built on
// aws-sdk-go-v2, following the same client-construction idiom as
// pkg/storage's S3 disk driver (static credentials, path-style endpoint
// override for MinIO/R2/Spaces, paginated listing).
package objectprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/shashiranjanraj/polystore/pkg/metrics"
	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/idgen"
)

// Provider is the object-store Provider.
type Provider struct {
	*store.BaseLifecycle

	cfg    Config
	client *s3.Client
}

// New returns a disconnected object-store provider for cfg.
func New(cfg Config) *Provider {
	return &Provider{
		BaseLifecycle: store.NewBaseLifecycle("object"),
		cfg:           cfg.withDefaults(),
	}
}

func (p *Provider) Connect(ctx context.Context) error {
	if !p.BeginConnect() {
		return nil
	}
	if p.cfg.BucketName == "" {
		return store.Errorf(store.KindConfiguration, "object.Connect", "bucketName is required")
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(p.cfg.Region)}
	if p.cfg.AccessKeyID != "" && p.cfg.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.cfg.AccessKeyID, p.cfg.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return store.NewError(store.KindConnection, "object.Connect", err)
	}

	var clientOpts []func(*s3.Options)
	if p.cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(p.cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	p.client = s3.NewFromConfig(cfg, clientOpts...)
	return nil
}

func (p *Provider) Disconnect(ctx context.Context) error {
	if !p.BeginDisconnect() {
		return nil
	}
	p.client = nil
	return nil
}

func (p *Provider) key(col, id string) string {
	if p.cfg.KeyPrefix == "" {
		return fmt.Sprintf("%s/%s.json", col, id)
	}
	return fmt.Sprintf("%s/%s/%s.json", strings.Trim(p.cfg.KeyPrefix, "/"), col, id)
}

func (p *Provider) prefix(col string) string {
	if p.cfg.KeyPrefix == "" {
		return col + "/"
	}
	return strings.Trim(p.cfg.KeyPrefix, "/") + "/" + col + "/"
}

func (p *Provider) Create(ctx context.Context, col string, doc store.Document) (store.Document, error) {
	const op = "object.Create"
	defer metrics.ObserveProviderOp("object", "create", time.Now())

	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	id := doc.ID()
	if id == "" {
		id = idgen.New()
	} else if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}

	existing, err := p.get(ctx, col, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, store.NewDuplicateKeyError(op, col, id)
	}

	stored := doc.WithID(id)
	if err := p.put(ctx, col, id, stored); err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}
	return store.CloneDocument(stored), nil
}

func (p *Provider) Read(ctx context.Context, col, id string) (store.Document, error) {
	const op = "object.Read"
	defer metrics.ObserveProviderOp("object", "read", time.Now())

	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	doc, err := p.get(ctx, col, id)
	if err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}
	return doc, nil
}

func (p *Provider) Update(ctx context.Context, col, id string, partial store.Document) (store.Document, error) {
	const op = "object.Update"
	defer metrics.ObserveProviderOp("object", "update", time.Now())

	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	existing, err := p.get(ctx, col, id)
	if err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}
	if existing == nil {
		return nil, nil
	}

	merged := store.CloneDocument(existing)
	for k, v := range partial {
		if k == "id" {
			continue
		}
		merged[k] = v
	}
	if err := p.put(ctx, col, id, merged); err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}
	return merged, nil
}

func (p *Provider) Delete(ctx context.Context, col, id string) (bool, error) {
	const op = "object.Delete"
	defer metrics.ObserveProviderOp("object", "delete", time.Now())

	if err := store.ValidateCollection(op, col); err != nil {
		return false, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return false, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return false, err
	}

	existing, err := p.get(ctx, col, id)
	if err != nil {
		return false, store.NewError(store.KindQuery, op, err)
	}
	if existing == nil {
		return false, nil
	}

	_, err = p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.cfg.BucketName),
		Key:    aws.String(p.key(col, id)),
	})
	if err != nil {
		return false, store.NewError(store.KindQuery, op, err)
	}
	return true, nil
}

func (p *Provider) Query(ctx context.Context, col string, opts store.QueryOptions) ([]store.Document, error) {
	const op = "object.Query"
	defer metrics.ObserveProviderOp("object", "query", time.Now())

	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	docs, err := p.listCollection(ctx, col)
	if err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}
	return store.RunQuery(docs, opts), nil
}

// BeginTransaction, Commit, and Rollback are Unsupported: object stores
// have no cross-object transaction primitive.
func (p *Provider) BeginTransaction(ctx context.Context) error {
	return store.Errorf(store.KindUnsupported, "object.BeginTransaction", "object-store provider has no native transactions")
}

func (p *Provider) Commit(ctx context.Context) error {
	return store.Errorf(store.KindUnsupported, "object.Commit", "object-store provider has no native transactions")
}

func (p *Provider) Rollback(ctx context.Context) error {
	return store.Errorf(store.KindUnsupported, "object.Rollback", "object-store provider has no native transactions")
}

// EnsureSchema is a no-op: object storage has no schema to declare.
func (p *Provider) EnsureSchema(ctx context.Context, col string, def *store.SchemaDefinition) error {
	return nil
}

// EnsureIndex is Unsupported: object keys are not indexable.
func (p *Provider) EnsureIndex(ctx context.Context, col string, def store.IndexDefinition) error {
	return store.Errorf(store.KindUnsupported, "object.EnsureIndex", "object-store provider cannot index keys")
}

func (p *Provider) get(ctx context.Context, col, id string) (store.Document, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.BucketName),
		Key:    aws.String(p.key(col, id)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	var doc store.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *Provider) put(ctx context.Context, col, id string, doc store.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.BucketName),
		Key:         aws.String(p.key(col, id)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (p *Provider) listCollection(ctx context.Context, col string) ([]store.Document, error) {
	prefix := p.prefix(col)
	var docs []store.Document

	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.cfg.BucketName),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(p.cfg.BucketName),
				Key:    obj.Key,
			})
			if err != nil {
				return nil, err
			}
			body, err := io.ReadAll(out.Body)
			out.Body.Close()
			if err != nil {
				return nil, err
			}
			var doc store.Document
			if err := json.Unmarshal(body, &doc); err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound") ||
		strings.Contains(err.Error(), "StatusCode: 404")
}

var _ store.Provider = (*Provider)(nil)

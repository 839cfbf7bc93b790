// Package documentprovider stores each collection as a MongoDB collection,
// translating store.Document's reserved "id" field onto Mongo's native
// "_id" and the query algebra onto Mongo's native operators. Built on
// go.mongodb.org/mongo-driver, following the client-construction idiom
// already used for Mongo log shipping in pkg/logger/mongo_handler.go.
package documentprovider

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/polystore/pkg/metrics"
	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/idgen"
)

// Provider is the MongoDB-backed document Provider.
type Provider struct {
	*store.BaseLifecycle

	cfg    Config
	client *mongo.Client
	db     *mongo.Database

	session mongo.Session // non-nil while a transaction is active
	sctx    mongo.SessionContext
}

// New returns a disconnected document provider for cfg.
func New(cfg Config) *Provider {
	return &Provider{
		BaseLifecycle: store.NewBaseLifecycle("document"),
		cfg:           cfg.withDefaults(),
	}
}

func (p *Provider) Connect(ctx context.Context) error {
	if !p.BeginConnect() {
		return nil
	}
	if p.cfg.DatabaseName == "" {
		return store.Errorf(store.KindConfiguration, "document.Connect", "databaseName is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, p.cfg.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(p.cfg.ConnectionString).
		SetConnectTimeout(p.cfg.ConnectTimeout).
		SetServerSelectionTimeout(p.cfg.ConnectTimeout).
		SetMaxPoolSize(p.cfg.MaxPoolSize)

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return store.NewError(store.KindConnection, "document.Connect", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return store.NewError(store.KindConnection, "document.Connect", err)
	}

	p.client = client
	p.db = client.Database(p.cfg.DatabaseName)
	return nil
}

func (p *Provider) Disconnect(ctx context.Context) error {
	if !p.BeginDisconnect() {
		return nil
	}
	if err := p.client.Disconnect(ctx); err != nil {
		return store.NewError(store.KindConnection, "document.Disconnect", err)
	}
	return nil
}

func (p *Provider) col(name string) *mongo.Collection {
	return p.db.Collection(name)
}

// ctxFor joins an open transaction session when one is active, so every
// operation participates in the same Mongo session transparently.
func (p *Provider) ctxFor(ctx context.Context) context.Context {
	if p.sctx != nil {
		return p.sctx
	}
	return ctx
}

func (p *Provider) Create(ctx context.Context, colName string, doc store.Document) (store.Document, error) {
	const op = "document.Create"
	defer metrics.ObserveProviderOp("document", "create", time.Now())

	if err := store.ValidateCollection(op, colName); err != nil {
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
	stored := doc.WithID(id)

	_, err := p.col(colName).InsertOne(p.ctxFor(ctx), toBSON(stored))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, store.NewDuplicateKeyError(op, colName, id)
		}
		return nil, store.NewError(store.KindQuery, op, err)
	}
	return store.CloneDocument(stored), nil
}

func (p *Provider) Read(ctx context.Context, colName, id string) (store.Document, error) {
	const op = "document.Read"
	defer metrics.ObserveProviderOp("document", "read", time.Now())

	if err := store.ValidateCollection(op, colName); err != nil {
		return nil, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	var raw bson.M
	err := p.col(colName).FindOne(p.ctxFor(ctx), bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, store.NewError(store.KindQuery, op, err)
	}
	return fromBSON(raw), nil
}

func (p *Provider) Update(ctx context.Context, colName, id string, partial store.Document) (store.Document, error) {
	const op = "document.Update"
	defer metrics.ObserveProviderOp("document", "update", time.Now())

	if err := store.ValidateCollection(op, colName); err != nil {
		return nil, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	set := bson.M{}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		set[k] = v
	}
	if len(set) > 0 {
		_, err := p.col(colName).UpdateOne(p.ctxFor(ctx), bson.M{"_id": id}, bson.M{"$set": set})
		if err != nil {
			return nil, store.NewError(store.KindQuery, op, err)
		}
	}
	return p.Read(ctx, colName, id)
}

func (p *Provider) Delete(ctx context.Context, colName, id string) (bool, error) {
	const op = "document.Delete"
	defer metrics.ObserveProviderOp("document", "delete", time.Now())

	if err := store.ValidateCollection(op, colName); err != nil {
		return false, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return false, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return false, err
	}

	res, err := p.col(colName).DeleteOne(p.ctxFor(ctx), bson.M{"_id": id})
	if err != nil {
		return false, store.NewError(store.KindQuery, op, err)
	}
	return res.DeletedCount > 0, nil
}

func (p *Provider) Query(ctx context.Context, colName string, opts store.QueryOptions) ([]store.Document, error) {
	const op = "document.Query"
	defer metrics.ObserveProviderOp("document", "query", time.Now())

	if err := store.ValidateCollection(op, colName); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	findOpts := options.Find()
	if sort := buildMongoSort(opts.SortBy); sort != nil {
		findOpts.SetSort(sort)
	}
	if opts.Offset != nil {
		findOpts.SetSkip(int64(*opts.Offset))
	}
	if opts.Limit != nil {
		findOpts.SetLimit(int64(*opts.Limit))
	}

	cursor, err := p.col(colName).Find(p.ctxFor(ctx), buildMongoFilter(opts.Filters), findOpts)
	if err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}
	defer cursor.Close(ctx)

	var docs []store.Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, store.NewError(store.KindQuery, op, err)
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}
	return docs, nil
}

func (p *Provider) BeginTransaction(ctx context.Context) error {
	const op = "document.BeginTransaction"
	if p.session != nil {
		return store.Errorf(store.KindTransaction, op, "transaction already in progress")
	}
	session, err := p.client.StartSession()
	if err != nil {
		return store.NewError(store.KindTransaction, op, err)
	}
	if err := session.StartTransaction(); err != nil {
		session.EndSession(ctx)
		return store.NewError(store.KindTransaction, op, err)
	}
	p.session = session
	p.sctx = mongo.NewSessionContext(ctx, session)
	return nil
}

func (p *Provider) Commit(ctx context.Context) error {
	const op = "document.Commit"
	if p.session == nil {
		return store.Errorf(store.KindTransaction, op, "no transaction in progress")
	}
	err := p.session.CommitTransaction(p.sctx)
	p.session.EndSession(ctx)
	p.session, p.sctx = nil, nil
	if err != nil {
		return store.NewError(store.KindTransaction, op, err)
	}
	return nil
}

func (p *Provider) Rollback(ctx context.Context) error {
	const op = "document.Rollback"
	if p.session == nil {
		return store.Errorf(store.KindTransaction, op, "no transaction in progress")
	}
	err := p.session.AbortTransaction(p.sctx)
	p.session.EndSession(ctx)
	p.session, p.sctx = nil, nil
	if err != nil {
		return store.NewError(store.KindTransaction, op, err)
	}
	return nil
}

// EnsureSchema is a no-op: Mongo collections are schemaless by default.
func (p *Provider) EnsureSchema(ctx context.Context, colName string, def *store.SchemaDefinition) error {
	return nil
}

func (p *Provider) EnsureIndex(ctx context.Context, colName string, def store.IndexDefinition) error {
	const op = "document.EnsureIndex"
	if err := store.ValidateCollection(op, colName); err != nil {
		return err
	}
	if len(def.Fields) == 0 {
		return store.Errorf(store.KindConfiguration, op, "index %q declares no fields", def.Name)
	}

	keys := make(bson.D, len(def.Fields))
	for i, f := range def.Fields {
		key := f
		if key == "id" {
			key = "_id"
		}
		keys[i] = bson.E{Key: key, Value: 1}
	}
	idxOpts := options.Index().SetUnique(def.Unique)
	if def.Name != "" {
		idxOpts.SetName(def.Name)
	}
	_, err := p.col(colName).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: idxOpts})
	if err != nil {
		return store.NewError(store.KindQuery, op, err)
	}
	return nil
}

func toBSON(doc store.Document) bson.M {
	out := bson.M{"_id": doc.ID()}
	for k, v := range doc {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

func fromBSON(raw bson.M) store.Document {
	doc := make(store.Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			if s, ok := v.(string); ok {
				doc["id"] = s
			} else {
				doc["id"] = v
			}
			continue
		}
		doc[k] = normalize(v)
	}
	return doc
}

// normalize converts the driver's native primitive.M/primitive.A shapes
// (and, for older decode paths, map[string]interface{}/[]interface{}) into
// store.Document/[]any so documents look identical regardless of back-end.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.M:
		out := make(store.Document, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(store.Document, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

var _ store.Provider = (*Provider)(nil)

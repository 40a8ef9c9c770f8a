package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/qmatter/hofstadter/pkg/cache"
)

const (
	defaultMongoDatabase = "hofstadter"
	runsCollection       = "runs"
)

// MongoCatalog stores runs in a MongoDB collection.
type MongoCatalog struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// runDocument is the stored form of a Run.
type runDocument struct {
	ID        string    `bson:"_id"`
	Program   string    `bson:"program"`
	Lattice   string    `bson:"lattice"`
	P         int       `bson:"p"`
	Q         int       `bson:"q"`
	T         []float64 `bson:"t"`
	Samples   int       `bson:"samples,omitempty"`
	Chern     []float64 `bson:"chern,omitempty"`
	Path      string    `bson:"path"`
	Version   string    `bson:"version,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	ElapsedNS int64     `bson:"elapsedNs"`
}

func toDocument(r Run) runDocument {
	return runDocument{
		ID:        r.ID.String(),
		Program:   r.Program,
		Lattice:   r.Lattice,
		P:         r.P,
		Q:         r.Q,
		T:         r.T,
		Samples:   r.Samples,
		Chern:     r.Chern,
		Path:      r.Path,
		Version:   r.Version,
		CreatedAt: r.Created.UTC(),
		ElapsedNS: int64(r.Elapsed),
	}
}

func (d runDocument) run() (Run, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Run{}, fmt.Errorf("run id %q: %w", d.ID, err)
	}
	return Run{
		ID:      id,
		Program: d.Program,
		Lattice: d.Lattice,
		P:       d.P,
		Q:       d.Q,
		T:       d.T,
		Samples: d.Samples,
		Chern:   d.Chern,
		Path:    d.Path,
		Version: d.Version,
		Created: d.CreatedAt.UTC(),
		Elapsed: time.Duration(d.ElapsedNS),
	}, nil
}

// mongoFilter translates a Filter into a query document.
func mongoFilter(f Filter) bson.M {
	q := bson.M{}
	if f.Program != "" {
		q["program"] = f.Program
	}
	if f.Lattice != "" {
		q["lattice"] = f.Lattice
	}
	if f.Q > 0 {
		q["q"] = f.Q
	}
	return q
}

// OpenMongo connects to uri and verifies the connection with a ping.
// Transient network failures are retried.
func OpenMongo(ctx context.Context, uri, database string) (*MongoCatalog, error) {
	if database == "" {
		database = defaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || stderrors.Is(err, context.DeadlineExceeded) {
				return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
			}
			return err
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	runs := client.Database(database).Collection(runsCollection)
	_, err = runs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "lattice", Value: 1}, {Key: "q", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoCatalog{client: client, runs: runs}, nil
}

// Record upserts a run by ID.
func (c *MongoCatalog) Record(ctx context.Context, run Run) error {
	doc := toDocument(run)
	_, err := c.runs.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// Get returns one run, or a NOT_FOUND error.
func (c *MongoCatalog) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	var doc runDocument
	err := c.runs.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	run, err := doc.run()
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns matching runs, newest first.
func (c *MongoCatalog) List(ctx context.Context, f Filter) ([]Run, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(f.limit()))
	cur, err := c.runs.Find(ctx, mongoFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer cur.Close(ctx)

	var docs []runDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode runs: %w", err)
	}
	runs := make([]Run, 0, len(docs))
	for _, d := range docs {
		r, err := d.run()
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}

// Delete removes a run, or returns NOT_FOUND.
func (c *MongoCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := c.runs.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close disconnects the client.
func (c *MongoCatalog) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/socialdoc/flock/internal/metrics"
	"github.com/socialdoc/flock/internal/platform/retry"
)

// Mongo implements Store on a MongoDB database. Every call is bounded by a
// timeout, retried on transient failures, and guarded by a circuit breaker so
// a dead store fails fast instead of piling up goroutines.
type Mongo struct {
	db      *mongo.Database
	client  *mongo.Client
	timeout time.Duration
	cb      circuitbreaker.CircuitBreaker[any]
	policy  retry.Policy
}

var _ Store = (*Mongo)(nil)

// NewMongo connects to the given URL and pings the deployment before
// returning, so a bad URL surfaces at startup rather than on first request.
func NewMongo(ctx context.Context, url, database string, timeout time.Duration) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	m := &Mongo{
		db:      client.Database(database),
		client:  client,
		timeout: timeout,
		cb:      newBreaker("mongo"),
	}
	m.policy = retry.Policy{
		MaxAttempts:    3,
		InitialBackoff: 50 * time.Millisecond,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Retrying store call", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	return m, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// classifyStoreErr decides whether a failed round-trip is worth repeating.
// Domain outcomes (not found, conflict) and caller cancellation are final.
func classifyStoreErr(err error) retry.Action {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return retry.Stop
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retry.Stop
	case mongo.IsDuplicateKeyError(err):
		return retry.Stop
	default:
		return retry.Retry
	}
}

// do runs one store operation through the breaker, the retry policy, and the
// operation metrics.
func (m *Mongo) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if !m.cb.TryAcquirePermit() {
		metrics.StoreOpsTotal.WithLabelValues(op, "rejected").Inc()
		return fmt.Errorf("store circuit breaker open: %w", circuitbreaker.ErrOpen)
	}

	start := time.Now()
	attempts := 0
	err := retry.DoVoid(ctx, m.policy, classifyStoreErr, func() error {
		attempts++
		if attempts > 1 {
			metrics.StoreRetriesTotal.WithLabelValues(op).Inc()
		}
		opCtx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		return fn(opCtx)
	})
	metrics.StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	var perm *retry.PermanentError
	if errors.As(err, &perm) {
		// Domain outcomes are successes from the store's point of view.
		m.cb.RecordSuccess()
		metrics.StoreOpsTotal.WithLabelValues(op, "ok").Inc()
		return perm.Err
	}
	if err != nil {
		m.cb.RecordError(err)
		metrics.StoreOpsTotal.WithLabelValues(op, "error").Inc()
		return err
	}
	m.cb.RecordSuccess()
	metrics.StoreOpsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

func (m *Mongo) Exists(ctx context.Context, collection, id string) (bool, error) {
	var found bool
	err := m.do(ctx, "exists", func(ctx context.Context) error {
		n, err := m.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("count %s/%s: %w", collection, id, err)
		}
		found = n > 0
		return nil
	})
	return found, err
}

func (m *Mongo) Get(ctx context.Context, collection, id string, out any) error {
	return m.do(ctx, "get", func(ctx context.Context) error {
		err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

func (m *Mongo) Create(ctx context.Context, collection, id string, doc any) error {
	return m.do(ctx, "create", func(ctx context.Context) error {
		_, err := m.db.Collection(collection).InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		if err != nil {
			return fmt.Errorf("create %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	return m.do(ctx, "delete", func(ctx context.Context) error {
		res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("delete %s/%s: %w", collection, id, err)
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (m *Mongo) Update(ctx context.Context, collection, id string, u Update) error {
	return m.do(ctx, "update", func(ctx context.Context) error {
		col := m.db.Collection(collection)

		// Each guarded append carries its own filter, so it is issued as its
		// own conditional update. Present-by-id makes the filter miss and the
		// call a no-op, which is exactly the idempotency contract.
		for field, member := range u.AppendUnique {
			filter := bson.M{"_id": id, field + ".id": bson.M{"$ne": member.ID}}
			if _, err := col.UpdateOne(ctx, filter, bson.M{"$push": bson.M{field: member.Doc}}); err != nil {
				return fmt.Errorf("append to %s/%s.%s: %w", collection, id, field, err)
			}
		}

		rest := plainUpdateDoc(u)
		if len(rest) == 0 {
			return nil
		}
		if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, rest); err != nil {
			return fmt.Errorf("update %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

func (m *Mongo) Search(ctx context.Context, collection string, q Query, out any) error {
	return m.do(ctx, "search", func(ctx context.Context) error {
		opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
		cursor, err := m.db.Collection(collection).Find(ctx, filterDoc(q), opts)
		if err != nil {
			return fmt.Errorf("search %s: %w", collection, err)
		}
		if err := cursor.All(ctx, out); err != nil {
			return fmt.Errorf("decode search %s: %w", collection, err)
		}
		return nil
	})
}

func (m *Mongo) DeleteByQuery(ctx context.Context, collection string, q Query) (int64, error) {
	var deleted int64
	err := m.do(ctx, "delete_by_query", func(ctx context.Context) error {
		res, err := m.db.Collection(collection).DeleteMany(ctx, filterDoc(q))
		if err != nil {
			return fmt.Errorf("delete by query %s: %w", collection, err)
		}
		deleted = res.DeletedCount
		return nil
	})
	return deleted, err
}

func (m *Mongo) UpdateByQuery(ctx context.Context, collection string, q Query, u Update) (int64, error) {
	if len(u.AppendUnique) > 0 {
		return 0, fmt.Errorf("AppendUnique is not supported in bulk updates")
	}

	var updated int64
	err := m.do(ctx, "update_by_query", func(ctx context.Context) error {
		res, err := m.db.Collection(collection).UpdateMany(ctx, filterDoc(q), plainUpdateDoc(u))
		if err != nil {
			return fmt.Errorf("update by query %s: %w", collection, err)
		}
		updated = res.ModifiedCount
		return nil
	})
	return updated, err
}

func (m *Mongo) CountByField(ctx context.Context, collection string, q Query, field string) (map[string]int64, error) {
	counts := make(map[string]int64)
	err := m.do(ctx, "count_by_field", func(ctx context.Context) error {
		pipeline := mongo.Pipeline{
			bson.D{{Key: "$match", Value: filterDoc(q)}},
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$" + field},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
		}
		cursor, err := m.db.Collection(collection).Aggregate(ctx, pipeline)
		if err != nil {
			return fmt.Errorf("aggregate %s by %s: %w", collection, field, err)
		}
		var buckets []struct {
			Key   string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.All(ctx, &buckets); err != nil {
			return fmt.Errorf("decode aggregation %s: %w", collection, err)
		}
		for _, b := range buckets {
			counts[b.Key] = b.Count
		}
		return nil
	})
	return counts, err
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// translateField maps the logical id field onto Mongo's _id key.
func translateField(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

func filterDoc(q Query) bson.M {
	filter := bson.M{}
	for field, v := range q.Eq {
		filter[translateField(field)] = v
	}
	for field, vs := range q.In {
		filter[translateField(field)] = bson.M{"$in": vs}
	}
	for field, id := range q.MemberID {
		filter[field+".id"] = id
	}
	if q.Range != nil {
		bounds := bson.M{}
		if !q.Range.From.IsZero() {
			bounds["$gte"] = q.Range.From
		}
		if !q.Range.To.IsZero() {
			bounds["$lt"] = q.Range.To
		}
		if len(bounds) > 0 {
			filter[q.Range.Field] = bounds
		}
	}
	return filter
}

func plainUpdateDoc(u Update) bson.M {
	update := bson.M{}
	if len(u.RemoveID) > 0 {
		pulls := bson.M{}
		for field, id := range u.RemoveID {
			pulls[field] = bson.M{"id": id}
		}
		update["$pull"] = pulls
	}
	if len(u.Set) > 0 {
		sets := bson.M{}
		for field, v := range u.Set {
			sets[field] = v
		}
		update["$set"] = sets
	}
	return update
}

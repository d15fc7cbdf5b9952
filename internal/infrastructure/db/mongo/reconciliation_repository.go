package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

const reconciliationsCollection = "project_reconciliations"

// reconciliationDoc is the stored form of ports.Reconciliation. One open
// document exists per project; a later failure overwrites it.
type reconciliationDoc struct {
	ProjectID  string     `bson:"project_id"`
	Progress   int        `bson:"progress"`
	UserID     string     `bson:"user_id"`
	Reason     string     `bson:"reason"`
	RecordedAt time.Time  `bson:"recorded_at"`
	ResolvedAt *time.Time `bson:"resolved_at,omitempty"`
}

// ReconciliationRepository implements ports.ReconciliationRepository.
type ReconciliationRepository struct {
	coll *mongo.Collection
}

// NewReconciliationRepository returns a repository on db.
func NewReconciliationRepository(db *mongo.Database) *ReconciliationRepository {
	return &ReconciliationRepository{coll: db.Collection(reconciliationsCollection)}
}

var _ ports.ReconciliationRepository = (*ReconciliationRepository)(nil)

// EnsureIndexes creates the lookup index on project_id and resolved_at.
func (r *ReconciliationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "resolved_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("reconciliation indexes: %w", err)
	}
	return nil
}

// Record upserts the open entry for r.ProjectID.
func (r *ReconciliationRepository) Record(ctx context.Context, rec ports.Reconciliation) error {
	filter := bson.M{"project_id": rec.ProjectID, "resolved_at": nil}
	update := bson.M{"$set": reconciliationDoc{
		ProjectID:  rec.ProjectID,
		Progress:   rec.Progress,
		UserID:     rec.UserID,
		Reason:     rec.Reason,
		RecordedAt: rec.RecordedAt.UTC(),
	}}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("record reconciliation %s: %w", rec.ProjectID, err)
	}
	return nil
}

// Resolve closes the open entry for projectID. It returns domain.ErrNotFound
// when nothing was open.
func (r *ReconciliationRepository) Resolve(ctx context.Context, projectID string, at time.Time) error {
	filter := bson.M{"project_id": projectID, "resolved_at": nil}
	update := bson.M{"$set": bson.M{"resolved_at": at.UTC()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("resolve reconciliation %s: %w", projectID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListOpen returns unresolved entries, oldest first.
func (r *ReconciliationRepository) ListOpen(ctx context.Context) ([]ports.Reconciliation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"resolved_at": nil}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reconciliations: %w", err)
	}
	defer cur.Close(ctx)

	var docs []reconciliationDoc
	if err := cur.All(ctx, &docs); err != nil {
		if errors.Is(err, mongo.ErrNilDocument) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode reconciliations: %w", err)
	}

	out := make([]ports.Reconciliation, 0, len(docs))
	for _, d := range docs {
		out = append(out, ports.Reconciliation{
			ProjectID:  d.ProjectID,
			Progress:   d.Progress,
			UserID:     d.UserID,
			Reason:     d.Reason,
			RecordedAt: d.RecordedAt,
			ResolvedAt: d.ResolvedAt,
		})
	}
	return out, nil
}

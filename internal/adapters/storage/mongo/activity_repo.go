package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"med-reminders/internal/domain/activity"
	"med-reminders/internal/ports/identity"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActivityRepo struct {
	col *mongodrv.Collection
}

func NewActivityRepo(db *mongodrv.Database) *ActivityRepo {
	return &ActivityRepo{col: db.Collection("activity_entries")}
}

type entryDoc struct {
	ID           string    `bson:"_id"`
	OwnerRef     string    `bson:"owner_ref"`
	Type         string    `bson:"type"`
	MedicationID string    `bson:"medication_id,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (r *ActivityRepo) Create(ctx context.Context, e activity.Entry) error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("entry id required")
	}
	_, err := r.col.InsertOne(ctx, entryDoc{
		ID:           e.ID,
		OwnerRef:     e.OwnerRef,
		Type:         string(e.Type),
		MedicationID: e.MedicationID,
		CreatedAt:    e.CreatedAt,
	})
	return err
}

func (r *ActivityRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter, limit int) ([]activity.Entry, error) {
	if len(owner.Refs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = activity.DefaultListLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"owner_ref": bson.M{"$in": owner.Refs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]activity.Entry, 0)
	for cur.Next(ctx) {
		var doc entryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, activity.Entry{
			ID:           doc.ID,
			OwnerRef:     doc.OwnerRef,
			Type:         activity.Type(doc.Type),
			MedicationID: doc.MedicationID,
			CreatedAt:    doc.CreatedAt,
		})
	}

	return out, cur.Err()
}

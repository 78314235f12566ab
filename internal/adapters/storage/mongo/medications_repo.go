package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"med-reminders/internal/domain/medications"
	"med-reminders/internal/ports/identity"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MedicationsRepo struct {
	col *mongodrv.Collection
}

func NewMedicationsRepo(db *mongodrv.Database) *MedicationsRepo {
	return &MedicationsRepo{col: db.Collection("medications")}
}

type medicationDoc struct {
	ID        string    `bson:"_id"`
	OwnerRef  string    `bson:"owner_ref"`
	Name      string    `bson:"name"`
	Dosage    string    `bson:"dosage,omitempty"`
	Frequency string    `bson:"frequency,omitempty"`
	Notes     string    `bson:"notes,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medication id required")
	}
	_, err := r.col.InsertOne(ctx, toMedicationDoc(m))
	return err
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string, owner identity.OwnerFilter) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(owner.Refs) == 0 {
		return medications.Medication{}, ErrNotFound
	}

	var doc medicationDoc
	err := r.col.FindOne(ctx, bson.M{
		"_id":       id,
		"owner_ref": bson.M{"$in": owner.Refs},
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, err
	}
	return fromMedicationDoc(doc), nil
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": m.ID}, toMedicationDoc(m))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string, owner identity.OwnerFilter) error {
	id = strings.TrimSpace(id)
	if id == "" || len(owner.Refs) == 0 {
		return ErrNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{
		"_id":       id,
		"owner_ref": bson.M{"$in": owner.Refs},
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter) ([]medications.Medication, error) {
	if len(owner.Refs) == 0 {
		return nil, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cur, err := r.col.Find(ctx, bson.M{"owner_ref": bson.M{"$in": owner.Refs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]medications.Medication, 0)
	for cur.Next(ctx) {
		var doc medicationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, fromMedicationDoc(doc))
	}

	return out, cur.Err()
}

func toMedicationDoc(m medications.Medication) medicationDoc {
	return medicationDoc{
		ID:        m.ID,
		OwnerRef:  m.OwnerRef,
		Name:      m.Name,
		Dosage:    m.Dosage,
		Frequency: m.Frequency,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromMedicationDoc(doc medicationDoc) medications.Medication {
	return medications.Medication{
		ID:        doc.ID,
		OwnerRef:  doc.OwnerRef,
		Name:      doc.Name,
		Dosage:    doc.Dosage,
		Frequency: doc.Frequency,
		Notes:     doc.Notes,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

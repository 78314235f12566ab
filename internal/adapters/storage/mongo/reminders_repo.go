package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"med-reminders/internal/domain/reminders"
	"med-reminders/internal/ports/identity"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RemindersRepo struct {
	col *mongodrv.Collection
}

func NewRemindersRepo(db *mongodrv.Database) *RemindersRepo {
	return &RemindersRepo{col: db.Collection("reminders")}
}

// reminderDoc es el documento persistido. Se mapea a mano para que el
// modelo de dominio no cargue tags bson.
type reminderDoc struct {
	ID           string     `bson:"_id"`
	OwnerRef     string     `bson:"owner_ref"`
	MedicationID string     `bson:"medication_id"`
	ScheduledAt  time.Time  `bson:"scheduled_at"`
	Status       string     `bson:"status"`
	CompletedAt  *time.Time `bson:"completed_at,omitempty"`
	SnoozedUntil *time.Time `bson:"snoozed_until,omitempty"`
	Notes        string     `bson:"notes,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	if strings.TrimSpace(rem.ID) == "" {
		return errors.New("reminder id required")
	}
	_, err := r.col.InsertOne(ctx, toReminderDoc(rem))
	return err
}

func (r *RemindersRepo) GetByID(ctx context.Context, id string, owner identity.OwnerFilter) (reminders.Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(owner.Refs) == 0 {
		return reminders.Reminder{}, ErrNotFound
	}

	filter := bson.M{
		"_id":       id,
		"owner_ref": bson.M{"$in": owner.Refs},
	}

	var doc reminderDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return reminders.Reminder{}, ErrNotFound
		}
		return reminders.Reminder{}, err
	}
	return fromReminderDoc(doc), nil
}

func (r *RemindersRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": rem.ID}, toReminderDoc(rem))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RemindersRepo) Delete(ctx context.Context, id string, owner identity.OwnerFilter) error {
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

func (r *RemindersRepo) ListByOwner(ctx context.Context, owner identity.OwnerFilter, filter reminders.ListFilter) ([]reminders.Reminder, error) {
	if len(owner.Refs) == 0 {
		return nil, nil
	}

	q := bson.M{
		"owner_ref": bson.M{"$in": owner.Refs},
	}

	// From inclusivo, To exclusivo
	sched := bson.M{}
	if filter.From != nil {
		sched["$gte"] = *filter.From
	}
	if filter.To != nil {
		sched["$lt"] = *filter.To
	}
	if len(sched) > 0 {
		q["scheduled_at"] = sched
	}

	if len(filter.NotStatuses) > 0 {
		statuses := make([]string, 0, len(filter.NotStatuses))
		for _, st := range filter.NotStatuses {
			statuses = append(statuses, string(st))
		}
		q["status"] = bson.M{"$nin": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]reminders.Reminder, 0)
	for cur.Next(ctx) {
		var doc reminderDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, fromReminderDoc(doc))
	}

	return out, cur.Err()
}

func toReminderDoc(rem reminders.Reminder) reminderDoc {
	return reminderDoc{
		ID:           rem.ID,
		OwnerRef:     rem.OwnerRef,
		MedicationID: rem.MedicationID,
		ScheduledAt:  rem.ScheduledAt,
		Status:       string(rem.Status),
		CompletedAt:  rem.CompletedAt,
		SnoozedUntil: rem.SnoozedUntil,
		Notes:        rem.Notes,
		CreatedAt:    rem.CreatedAt,
		UpdatedAt:    rem.UpdatedAt,
	}
}

func fromReminderDoc(doc reminderDoc) reminders.Reminder {
	return reminders.Reminder{
		ID:           doc.ID,
		OwnerRef:     doc.OwnerRef,
		MedicationID: doc.MedicationID,
		ScheduledAt:  doc.ScheduledAt,
		Status:       reminders.Status(doc.Status),
		CompletedAt:  doc.CompletedAt,
		SnoozedUntil: doc.SnoozedUntil,
		Notes:        doc.Notes,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

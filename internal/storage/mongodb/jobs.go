package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const jobCollection = "jobs"

type JobRepo struct {
	db  *mongo.Database
	now func() time.Time
}

func NewJobRepo(ctx context.Context, db *mongo.Database) (*JobRepo, error) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}
	if _, err := db.Collection(jobCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create job indexes: %w", err)
	}
	return &JobRepo{db: db, now: time.Now}, nil
}

var _ storage.JobRepository = (*JobRepo)(nil)

func (r *JobRepo) collection() *mongo.Collection {
	return r.db.Collection(jobCollection)
}

func decodeJob(result *mongo.SingleResult) (*models.Job, error) {
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	var doc jobDocument
	if err := result.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toModel()
}

func (r *JobRepo) Create(ctx context.Context, job *models.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := r.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if _, err := r.collection().InsertOne(ctx, toJobDocument(job)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrConflict
		}
		return err
	}
	return nil
}

func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return decodeJob(r.collection().FindOne(ctx, bson.M{"_id": id.String()}))
}

func (r *JobRepo) List(ctx context.Context, limit, offset int) ([]*models.Job, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection().Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []jobDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	jobs := make([]*models.Job, 0, len(docs))
	for i := range docs {
		job, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (r *JobRepo) Update(ctx context.Context, id uuid.UUID, patch *models.JobPatch) (*models.Job, error) {
	set := bson.M{"updated_at": r.now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Company != nil {
		set["company"] = *patch.Company
	}
	if patch.Skills != nil {
		set["skills"] = patch.Skills
	}
	return decodeJob(r.collection().FindOneAndUpdate(
		ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	))
}

func (r *JobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AddApplicant pushes only when the applicant is not already listed.
func (r *JobRepo) AddApplicant(ctx context.Context, jobID uuid.UUID, applicant models.JobApplicant) error {
	filter := bson.M{"_id": jobID.String(), "applicants.id": bson.M{"$ne": applicant.ID.String()}}
	update := bson.M{
		"$push": bson.M{"applicants": jobApplicantDocument{ID: applicant.ID.String(), Name: applicant.Name}},
		"$set":  bson.M{"updated_at": r.now()},
	}
	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, jobID); err != nil {
		return err
	}
	return storage.ErrConflict
}

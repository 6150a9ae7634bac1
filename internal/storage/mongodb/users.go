// Package mongodb stores identities and jobs in MongoDB. Role migration uses
// a multi-document transaction, so the server must run as a replica set.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-board-api/internal/models"
	"job-board-api/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const userCollection = "users"

type UserRepo struct {
	db  *mongo.Database
	now func() time.Time
}

// NewUserRepo ensures the user indexes exist and returns the repository.
func NewUserRepo(ctx context.Context, db *mongo.Database) (*UserRepo, error) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	for _, provider := range models.KnownProviders {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "providers." + provider, Value: 1}},
			Options: options.Index().SetSparse(true),
		})
	}

	if _, err := db.Collection(userCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create user indexes: %w", err)
	}
	return &UserRepo{db: db, now: time.Now}, nil
}

var _ storage.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) collection() *mongo.Collection {
	return r.db.Collection(userCollection)
}

func decodeIdentity(result *mongo.SingleResult) (*models.Identity, error) {
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, storage.ErrDuplicateEmail
		}
		return nil, err
	}
	var doc identityDocument
	if err := result.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toModel()
}

func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	return decodeIdentity(r.collection().FindOne(ctx, bson.M{"_id": id.String()}))
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return decodeIdentity(r.collection().FindOne(ctx, bson.M{"email": email}))
}

func (r *UserRepo) FindByProvider(ctx context.Context, provider, subject string) (*models.Identity, error) {
	if !models.IsKnownProvider(provider) {
		return nil, storage.ErrNotFound
	}
	return decodeIdentity(r.collection().FindOne(ctx, bson.M{"providers." + provider: subject}))
}

func (r *UserRepo) FindByResetToken(ctx context.Context, token string, now time.Time) (*models.Identity, error) {
	filter := bson.M{"reset_token": token, "reset_expires": bson.M{"$gt": now}}
	return decodeIdentity(r.collection().FindOne(ctx, filter))
}

func (r *UserRepo) ListByRole(ctx context.Context, role models.Role, limit int) ([]*models.Identity, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	cursor, err := r.collection().Find(ctx, bson.M{"role": string(role)}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []identityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	identities := make([]*models.Identity, 0, len(docs))
	for i := range docs {
		identity, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, nil
}

func (r *UserRepo) Insert(ctx context.Context, identity *models.Identity) error {
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	now := r.now()
	identity.CreatedAt = now
	identity.UpdatedAt = now

	if _, err := r.collection().InsertOne(ctx, toIdentityDocument(identity)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, patch *models.IdentityPatch) (*models.Identity, error) {
	set := bson.M{"updated_at": r.now()}
	unset := bson.M{}

	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}
	if patch.Reset != nil {
		if patch.Reset.IsZero() {
			unset["reset_token"] = ""
			unset["reset_expires"] = ""
		} else {
			set["reset_token"] = patch.Reset.Token
			set["reset_expires"] = patch.Reset.Expires
		}
	}
	if patch.Links != nil {
		providers := patch.Links.Providers
		if providers == nil {
			providers = map[string]string{}
		}
		set["providers"] = providers
		set["tokens"] = toTokenDocuments(patch.Links.Tokens)
	}
	if patch.Profile != nil {
		set["profile"] = toProfileDocument(*patch.Profile)
	}
	if patch.RoleProfile != nil {
		if a := toApplicantDocument(patch.RoleProfile.Applicant); a != nil {
			set["applicant"] = a
		} else {
			unset["applicant"] = ""
		}
		if rp := toRecruiterDocument(patch.RoleProfile.Recruiter); rp != nil {
			set["recruiter"] = rp
		} else {
			unset["recruiter"] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return decodeIdentity(r.collection().FindOneAndUpdate(
		ctx,
		bson.M{"_id": id.String()},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	))
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Replace runs the delete and insert in one transaction.
func (r *UserRepo) Replace(ctx context.Context, oldID uuid.UUID, replacement *models.Identity) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		if err := r.Delete(txCtx, oldID); err != nil {
			return nil, err
		}
		return nil, r.Insert(txCtx, replacement)
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", oldID.String()).Msg("Identity replace rolled back")
	}
	return err
}

// RedeemResetToken matches and clears the token in one findAndModify.
func (r *UserRepo) RedeemResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*models.Identity, error) {
	filter := bson.M{"reset_token": token, "reset_expires": bson.M{"$gt": now}}
	update := bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "updated_at": r.now()},
		"$unset": bson.M{"reset_token": "", "reset_expires": ""},
	}
	return decodeIdentity(r.collection().FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	))
}

func (r *UserRepo) AddOpening(ctx context.Context, recruiterID uuid.UUID, opening models.Opening) error {
	doc := openingDocument{JobID: opening.JobID.String(), JobName: opening.JobName}
	return r.updateRecruiter(ctx, recruiterID, bson.M{"$push": bson.M{"recruiter.openings": doc}})
}

func (r *UserRepo) RemoveOpening(ctx context.Context, recruiterID, jobID uuid.UUID) error {
	return r.updateRecruiter(ctx, recruiterID, bson.M{"$pull": bson.M{"recruiter.openings": bson.M{"job_id": jobID.String()}}})
}

func (r *UserRepo) updateRecruiter(ctx context.Context, recruiterID uuid.UUID, update bson.M) error {
	update["$set"] = bson.M{"updated_at": r.now()}
	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": recruiterID.String(), "role": string(models.RoleRecruiter)}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

package secretstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongooptions "go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/otpgate/pkg/cryptobox"
)

const (
	backendMongo = "mongo"

	// DefaultCollection is the collection used by MongoStore.
	DefaultCollection = "totp_secrets"
)

type secretDocument struct {
	UserID     string    `bson:"_id"`
	IV         []byte    `bson:"iv"`
	Ciphertext []byte    `bson:"ciphertext"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// MongoStore keeps one document per user keyed by user id.
type MongoStore struct {
	coll   *mongo.Collection
	sealer sealer
	opts   options
}

// NewMongoStore creates a store in db. The client stays owned by the caller.
func NewMongoStore(db *mongo.Database, masterKey []byte, opts ...Option) (*MongoStore, error) {
	if db == nil {
		return nil, ErrBackendNotWired
	}
	s, err := newSealer(masterKey)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &MongoStore{coll: db.Collection(o.collection), sealer: s, opts: o}, nil
}

func (m *MongoStore) StoreSecret(ctx context.Context, userID, secret string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if secret == "" {
		return ErrInvalidSecret
	}

	rec, err := m.sealer.seal([]byte(secret))
	if err != nil {
		return errors.Join(ErrStorage, err)
	}

	doc := secretDocument{
		UserID:     userID,
		IV:         rec.IV,
		Ciphertext: rec.Ciphertext,
		UpdatedAt:  time.Now().UTC(),
	}
	_, err = m.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: userID}}, doc, mongooptions.Replace().SetUpsert(true))
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (m *MongoStore) GetSecret(ctx context.Context, userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}

	var doc secretDocument
	if err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrStorage, err)
	}

	plain, err := m.sealer.open(cryptobox.Record{IV: doc.IV, Ciphertext: doc.Ciphertext})
	if err != nil {
		m.opts.corrupted(ctx, backendMongo, userID, errors.Join(ErrCorrupted, err))
		return "", ErrNotFound
	}
	return string(plain), nil
}

func (m *MongoStore) HasSecret(ctx context.Context, userID string) (bool, error) {
	return hasSecret(ctx, m, userID)
}

func (m *MongoStore) RemoveSecret(ctx context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if _, err := m.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: userID}}); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (m *MongoStore) Users(ctx context.Context) ([]string, error) {
	opts := mongooptions.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	defer cur.Close(ctx)

	var docs []struct {
		UserID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}

	users := make([]string, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.UserID)
	}
	return users, nil
}

// Close wipes the store subkey. The client is left open.
func (m *MongoStore) Close() error {
	m.sealer.wipe()
	return nil
}

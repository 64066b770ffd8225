package mongo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionSessions = "console_sessions"

type cookieDoc struct {
	Name  string `bson:"name"`
	Value string `bson:"value"`
}

type sessionDoc struct {
	ID        string               `bson:"_id"`
	Token     string               `bson:"token,omitempty"`
	Cookies   map[string]cookieDoc `bson:"cookies,omitempty"`
	ExpiresAt time.Time            `bson:"expires_at"`
}

// SessionStore keeps one document per session. Fields are updated with $set
// so concurrent writers of the same session never clobber each other, and a
// TTL index on expires_at reaps abandoned sessions.
type SessionStore struct {
	col *mongo.Collection
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(db *mongo.Database, ttl time.Duration) *SessionStore {
	return &SessionStore{col: db.Collection(collectionSessions), ttl: ttl, now: time.Now}
}

// EnsureIndexes creates the TTL index on expires_at.
func (s *SessionStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}

// cookieField keeps cookie names containing '.' or '$' out of the field path.
func cookieField(name string) string {
	return "cookies." + base64.RawURLEncoding.EncodeToString([]byte(name))
}

func (s *SessionStore) find(ctx context.Context, id string) (*sessionDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc sessionDoc
	err := s.col.FindOne(ctx, bson.M{"_id": id, "expires_at": bson.M{"$gt": s.now()}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &doc, nil
}

func (s *SessionStore) update(ctx context.Context, id string, set, unset bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if set == nil {
		set = bson.M{}
	}
	set["expires_at"] = s.now().Add(s.ttl)
	upd := bson.M{"$set": set}
	if len(unset) > 0 {
		upd["$unset"] = unset
	}
	_, err := s.col.UpdateByID(ctx, id, upd, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (s *SessionStore) Token(ctx context.Context, id string) (string, error) {
	doc, err := s.find(ctx, id)
	if err != nil || doc == nil {
		return "", err
	}
	return doc.Token, nil
}

func (s *SessionStore) SetToken(ctx context.Context, id, token string) error {
	return s.update(ctx, id, bson.M{"token": token}, nil)
}

func (s *SessionStore) ClearToken(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.UpdateByID(ctx, id, bson.M{"$unset": bson.M{"token": ""}}); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

func (s *SessionStore) Cookies(ctx context.Context, id string) (map[string]string, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if doc == nil {
		return out, nil
	}
	for _, ck := range doc.Cookies {
		out[ck.Name] = ck.Value
	}
	return out, nil
}

func (s *SessionStore) SetCookies(ctx context.Context, id string, cookies map[string]string) error {
	if len(cookies) == 0 {
		return nil
	}
	set, unset := bson.M{}, bson.M{}
	for name, value := range cookies {
		if value == "" {
			unset[cookieField(name)] = ""
			continue
		}
		set[cookieField(name)] = cookieDoc{Name: name, Value: value}
	}
	return s.update(ctx, id, set, unset)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.col.Database().Client().Ping(ctx, nil)
}

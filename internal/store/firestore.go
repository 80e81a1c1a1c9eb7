package store

import (
	"context"
	"net/url"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const kvCollection = "kv"

type kvDocument struct {
	Key   string `firestore:"key"`
	Value string `firestore:"value"`
}

// FirestoreStore keeps one document per key in the kv collection.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an existing client. The caller owns the client's lifetime.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Document ids may not contain '/', which user keys can.
func (s *FirestoreStore) doc(key string) *firestore.DocumentRef {
	return s.client.Collection(kvCollection).Doc(url.PathEscape(key))
}

func (s *FirestoreStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	snap, err := s.doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var doc kvDocument
	if err := snap.DataTo(&doc); err != nil {
		return "", false, err
	}
	return doc.Value, true, nil
}

func (s *FirestoreStore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := s.doc(key).Set(ctx, kvDocument{Key: key, Value: value})
	return err
}

func (s *FirestoreStore) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := s.doc(key).Delete(ctx)
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

func (s *FirestoreStore) RemoveMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := checkKey(key); err != nil {
			return err
		}
	}
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, key := range keys {
			if err := tx.Delete(s.doc(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

package filetransfer

import (
	"bytes"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const defaultObjectTTL = 5 * time.Minute

var ErrRevoked = errors.New("filetransfer: object reference revoked")

// Object is a transient reference to a downloaded payload. It stays readable
// until it is revoked.
type Object struct {
	id    string
	size  int
	store *ObjectStore
}

func (o *Object) ID() string { return o.id }

func (o *Object) Size() int { return o.size }

// Open returns a reader over the payload, or ErrRevoked once released.
func (o *Object) Open() (io.Reader, error) {
	v, ok := o.store.objects.Get(o.id)
	if !ok {
		return nil, ErrRevoked
	}
	return bytes.NewReader(v.([]byte)), nil
}

// ObjectStore holds live object references. Every reference is expected to
// be revoked explicitly; the TTL only bounds how long a forgotten one lives.
type ObjectStore struct {
	objects *cache.Cache
}

// NewObjectStore creates a store whose unreleased objects expire after ttl.
// A non-positive ttl selects five minutes.
func NewObjectStore(ttl time.Duration) *ObjectStore {
	if ttl <= 0 {
		ttl = defaultObjectTTL
	}
	return &ObjectStore{objects: cache.New(ttl, 2*ttl)}
}

func (s *ObjectStore) Create(data []byte) *Object {
	o := &Object{
		id:    "blob:" + uuid.NewString(),
		size:  len(data),
		store: s,
	}
	s.objects.SetDefault(o.id, data)
	return o
}

func (s *ObjectStore) Revoke(o *Object) {
	if o == nil {
		return
	}
	s.objects.Delete(o.id)
}

// Live reports how many objects have not been revoked yet.
func (s *ObjectStore) Live() int {
	return s.objects.ItemCount()
}

// Scoped creates an object for data, hands it to fn and revokes it when fn
// returns, whatever the result.
func (s *ObjectStore) Scoped(data []byte, fn func(*Object) error) error {
	o := s.Create(data)
	defer s.Revoke(o)
	return fn(o)
}

package memory

import (
	"context"
	"io"
	"sync"
)

// Object is an image kept by ObjectStore.
type Object struct {
	Key         string
	ContentType string
	Metadata    map[string]string
	Data        []byte
}

// ObjectStore keeps uploaded objects in process. It backs local runs without
// a bucket and the upload tests.
type ObjectStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]Object
	puts    int
	failErr error
}

func NewObjectStore(baseURL string) *ObjectStore {
	return &ObjectStore{baseURL: baseURL, objects: make(map[string]Object)}
}

// FailWith makes every later PutObject return err.
func (s *ObjectStore) FailWith(err error) {
	s.mu.Lock()
	s.failErr = err
	s.mu.Unlock()
}

func (s *ObjectStore) PutObject(_ context.Context, key string, body io.Reader, contentType string, _ int64, metadata map[string]string) error {
	s.mu.Lock()
	s.puts++
	failErr := s.failErr
	s.mu.Unlock()
	if failErr != nil {
		return failErr
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.objects[key] = Object{Key: key, ContentType: contentType, Metadata: metadata, Data: data}
	s.mu.Unlock()
	return nil
}

func (s *ObjectStore) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

// Puts counts every PutObject call, failed ones included.
func (s *ObjectStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func (s *ObjectStore) Get(key string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	return o, ok
}

package cdn

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// stubService plays the storage service and the presigned upload target.
type stubService struct {
	t      *testing.T
	server *httptest.Server

	mu             sync.Mutex
	serviceHeaders []http.Header
	presignBodies  []PresignRequest
	presignCalls   int
	putCalls       int
	deleteCalls    int
	objects        map[string][]byte
	contentTypes   map[string]string
	lastQuery      string

	inFlight    int
	maxInFlight int

	presignStatus int
	presignBody   string
	failPut       map[string]int
	putDelay      map[string]time.Duration
}

func newStubService(t *testing.T) *stubService {
	s := &stubService{
		t:            t,
		objects:      map[string][]byte{},
		contentTypes: map[string]string{},
		failPut:      map[string]int{},
		putDelay:     map[string]time.Duration{},
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

func (s *stubService) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.serviceHeaders) + s.putCalls
}

func (s *stubService) handle(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/upload/") {
		s.handlePut(w, r)
		return
	}

	s.mu.Lock()
	s.serviceHeaders = append(s.serviceHeaders, r.Header.Clone())
	s.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == presignPath:
		s.handlePresign(w, r)
	case r.Method == http.MethodDelete && r.URL.Path == deletePath:
		s.handleDelete(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/cdn/storages/media/":
		s.mu.Lock()
		count := len(s.objects)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"name": "media", "fileCount": count})
	case r.Method == http.MethodGet && r.URL.Path == "/cdn/storages/media/files/":
		s.mu.Lock()
		s.lastQuery = r.URL.RawQuery
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"files": []string{}})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
}

func (s *stubService) handlePresign(w http.ResponseWriter, r *http.Request) {
	var req PresignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	s.presignCalls++
	s.presignBodies = append(s.presignBodies, req)
	status, body := s.presignStatus, s.presignBody
	s.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
		return
	}

	key := "uploads/" + req.FileName
	writeJSON(w, http.StatusOK, PresignGrant{
		URL: s.server.URL + "/upload/" + key + "?X-Amz-Signature=test",
		Key: key,
	})
}

func (s *stubService) handlePut(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/upload/")
	name := key[strings.LastIndex(key, "/")+1:]

	s.mu.Lock()
	s.putCalls++
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	delay := s.putDelay[name]
	failStatus := s.failPut[name]
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if r.Header.Get("Authorization") != "" {
		s.t.Errorf("presigned upload of %s carried an Authorization header", key)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	time.Sleep(delay)

	if failStatus != 0 {
		w.WriteHeader(failStatus)
		_, _ = w.Write([]byte("<Error><Code>AccessDenied</Code></Error>"))
		return
	}

	s.mu.Lock()
	s.objects[key] = body
	s.contentTypes[key] = r.Header.Get("Content-Type")
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *stubService) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++

	if _, ok := s.objects[req.Key]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Object not found."})
		return
	}
	delete(s.objects, req.Key)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// zeroReaderAt pretends to be an arbitrarily large in-memory file.
type zeroReaderAt struct{}

func (zeroReaderAt) ReadAt(p []byte, _ int64) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

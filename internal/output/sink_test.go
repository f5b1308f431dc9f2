package output

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseSink(t *testing.T) {
	rec := httptest.NewRecorder()
	sink := NewResponseSink(rec)

	if _, err := sink.Write([]byte("{\"id\":1,\"name\":\"a\"}\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if !rec.Flushed {
		t.Error("recorder was not flushed")
	}
	if rec.Body.String() != "{\"id\":1,\"name\":\"a\"}\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// bareWriter exposes only the http.ResponseWriter methods, hiding Flush.
type bareWriter struct {
	http.ResponseWriter
}

func TestResponseSink_WithoutFlusherSupport(t *testing.T) {
	sink := NewResponseSink(bareWriter{httptest.NewRecorder()})

	if err := sink.Flush(); err != nil {
		t.Errorf("Flush() on a non-flushing writer error = %v, want nil", err)
	}
}

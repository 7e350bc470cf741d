package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"
)

func newContainer(logger *zerolog.Logger) *restful.Container {
	container := restful.NewContainer()
	container.Filter(Logger(logger))
	container.Filter(RecoverPanic(logger))

	ws := new(restful.WebService)
	ws.Path("/").Produces(restful.MIME_JSON)
	ws.Route(ws.GET("/boom").To(func(req *restful.Request, resp *restful.Response) {
		panic("kaboom")
	}))
	ws.Route(ws.GET("/bad").To(func(req *restful.Request, resp *restful.Response) {
		HandleError(resp, errors.New("missing field"), http.StatusBadRequest)
	}))
	container.Add(ws)
	return container
}

func TestRecoverPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	container := newContainer(&logger)

	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", recorder.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body.Details != "panic: kaboom" || body.Code != 500 {
		t.Errorf("Unexpected body: %+v", body)
	}
	if !strings.Contains(buf.String(), "Recovered from panic") {
		t.Error("Expected panic to be logged")
	}
}

func TestHandleError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	container := newContainer(&logger)

	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/bad", nil))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body.Error != "Bad Request" || body.Details != "missing field" {
		t.Errorf("Unexpected body: %+v", body)
	}

	logged := buf.String()
	if !strings.Contains(logged, `"status":400`) || !strings.Contains(logged, `"level":"warn"`) {
		t.Errorf("Expected warn log with status, got %s", logged)
	}
}

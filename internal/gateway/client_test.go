package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(rt http.RoundTripper) *Client {
	return NewClient("https://quiz.test/api", &http.Client{Transport: rt})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func TestCategoriesDecodesEnvelope(t *testing.T) {
	var seenPath string
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seenPath = r.URL.Path
		return jsonResponse(http.StatusOK, `{"categories":[{"id":1,"title":"Science","parent":0},{"id":2,"title":"Physics","parent":1}]}`), nil
	}))

	categories, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories returned error: %v", err)
	}
	if seenPath != "/api/categories" {
		t.Fatalf("unexpected path %q", seenPath)
	}
	if len(categories) != 2 || categories[1].Parent != 1 {
		t.Fatalf("unexpected payload: %+v", categories)
	}
}

func TestTopicsPostsCategoryID(t *testing.T) {
	var seenBody map[string]int
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if err := json.NewDecoder(r.Body).Decode(&seenBody); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"topics":[{"id":10,"title":"Gravity","category":2}]}`), nil
	}))

	topics, err := client.Topics(context.Background(), 2)
	if err != nil {
		t.Fatalf("Topics returned error: %v", err)
	}
	if seenBody["category"] != 2 {
		t.Fatalf("expected category=2 in request body, got %v", seenBody)
	}
	if len(topics) != 1 || topics[0].ID != 10 {
		t.Fatalf("unexpected topics: %+v", topics)
	}
}

func TestQuestionsPassesTopicQueryParam(t *testing.T) {
	var seenTopic string
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seenTopic = r.URL.Query().Get("topic")
		return jsonResponse(http.StatusOK, `{"questions":[{"id":1,"title":"Q","correct":3,"topic":10}]}`), nil
	}))

	questions, err := client.Questions(context.Background(), 10)
	if err != nil {
		t.Fatalf("Questions returned error: %v", err)
	}
	if seenTopic != "10" {
		t.Fatalf("expected topic=10 query param, got %q", seenTopic)
	}
	if len(questions) != 1 || questions[0].Correct != 3 {
		t.Fatalf("wire correct index must pass through untouched: %+v", questions)
	}
}

func TestNonOKStatusIsAnError(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, ""), nil
	}))

	if _, err := client.Banners(context.Background()); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestMalformedBodyIsAnError(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "not-json"), nil
	}))

	if _, err := client.Categories(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSaveProgressReportsServerVerdict(t *testing.T) {
	var seen ProgressUpload
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if err := json.NewDecoder(r.Body).Decode(&seen); err != nil {
			t.Fatalf("decode upload: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"success":true,"message":"saved"}`), nil
	}))

	ok, message, err := client.SaveProgress(context.Background(), ProgressUpload{
		UserID:         42,
		QuizID:         7,
		Score:          30,
		CorrectAnswers: 3,
		TotalQuestions: 5,
		QuizData:       json.RawMessage(`[{"q":1}]`),
		Datetime:       "2026-08-31T10:00:00Z",
		DeviceID:       "dev-1",
	})
	if err != nil {
		t.Fatalf("SaveProgress returned error: %v", err)
	}
	if !ok || message != "saved" {
		t.Fatalf("unexpected verdict: ok=%v message=%q", ok, message)
	}
	if seen.UserID != 42 || seen.QuizID != 7 || seen.DeviceID != "dev-1" {
		t.Fatalf("identity fields missing from upload: %+v", seen)
	}
}

func TestSaveProgressRejectionIsNotAnError(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":false,"message":"duplicate"}`), nil
	}))

	ok, message, err := client.SaveProgress(context.Background(), ProgressUpload{})
	if err != nil {
		t.Fatalf("server rejection must not be a transport error: %v", err)
	}
	if ok || message != "duplicate" {
		t.Fatalf("unexpected verdict: ok=%v message=%q", ok, message)
	}
}

// Package gateway is the HTTP client for the remote quiz service. It
// speaks the server's wire format; conversion to the local domain
// shapes happens in internal/quiz.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://quiz.example.com/api"
	defaultTimeout = 10 * time.Second
)

// RawCategory mirrors the server's category payload.
type RawCategory struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	Parent      int    `json:"parent"`
	Description string `json:"description"`
}

type RawBanner struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
	URL   string `json:"url"`
}

type RawTopic struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        int    `json:"category"`
	CategoryTitle   string `json:"categorytitle"`
	QuestionsLength int    `json:"questionsLength"`
	TotalScore      int    `json:"totalScore"`
	Image           string `json:"image"`
}

// RawQuestion carries the one-based correct-option index the server
// uses. internal/quiz converts it to zero-based on load.
type RawQuestion struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Option1     string `json:"option_1"`
	Option2     string `json:"option_2"`
	Option3     string `json:"option_3"`
	Option4     string `json:"option_4"`
	Correct     int    `json:"correct"`
	Explanation string `json:"explanation"`
	Link        string `json:"link"`
	Score       int    `json:"score"`
	Story       string `json:"story"`
	Topic       int    `json:"topic"`
	Category    int    `json:"category"`
	Difficulty  int    `json:"difficulty"`
}

// ProgressUpload is one queued quiz completion on its way to the
// server. DeviceID plus the user/quiz/datetime triple gives the server
// enough identity to deduplicate retried uploads.
type ProgressUpload struct {
	UserID         int             `json:"userID"`
	QuizID         int             `json:"quizId"`
	Score          int             `json:"score"`
	CorrectAnswers int             `json:"correctAnswers"`
	TotalQuestions int             `json:"totalQuestions"`
	QuizData       json.RawMessage `json:"quizData"`
	Datetime       string          `json:"datetime"`
	DeviceID       string          `json:"deviceId"`
}

type categoriesResponse struct {
	Categories []RawCategory `json:"categories"`
}

type bannersResponse struct {
	Banners []RawBanner `json:"banners"`
}

type topicsResponse struct {
	Topics []RawTopic `json:"topics"`
}

type topicResponse struct {
	Topic RawTopic `json:"topic"`
}

type questionsResponse struct {
	Questions []RawQuestion `json:"questions"`
}

type syncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

func (c *Client) Categories(ctx context.Context) ([]RawCategory, error) {
	var payload categoriesResponse
	if err := c.get(ctx, "categories", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Categories, nil
}

func (c *Client) Banners(ctx context.Context) ([]RawBanner, error) {
	var payload bannersResponse
	if err := c.get(ctx, "banners", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Banners, nil
}

func (c *Client) Topics(ctx context.Context, categoryID int) ([]RawTopic, error) {
	var payload topicsResponse
	body := map[string]int{"category": categoryID}
	if err := c.post(ctx, "topics", body, &payload); err != nil {
		return nil, err
	}
	return payload.Topics, nil
}

func (c *Client) Topic(ctx context.Context, id int) (RawTopic, error) {
	var payload topicResponse
	body := map[string]int{"id": id}
	if err := c.post(ctx, "viewTopic", body, &payload); err != nil {
		return RawTopic{}, err
	}
	return payload.Topic, nil
}

func (c *Client) Questions(ctx context.Context, topicID int) ([]RawQuestion, error) {
	var payload questionsResponse
	query := url.Values{"topic": {strconv.Itoa(topicID)}}
	if err := c.get(ctx, "questions", query, &payload); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

// SaveProgress uploads one progress record. A reachable server that
// rejects the record comes back as (false, message, nil); transport
// and decode problems come back as errors. Retrying the same upload is
// safe: the server deduplicates on the payload identity fields.
func (c *Client) SaveProgress(ctx context.Context, upload ProgressUpload) (bool, string, error) {
	var payload syncResponse
	if err := c.post(ctx, "syncUserQuizProgress", upload, &payload); err != nil {
		return false, "", err
	}
	return payload.Success, payload.Message, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	reqURL := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	return c.do(req, endpoint, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, endpoint, out)
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", endpoint, err)
	}
	return nil
}

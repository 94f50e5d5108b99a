package quiz

import "time"

// OptionCount is fixed by the server contract: every question carries
// exactly four answer options.
const OptionCount = 4

// Category mirrors a server-side category verbatim. Parent is 0 for
// root categories.
type Category struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	Parent      int    `json:"parent"`
	Description string `json:"description"`
}

// Banner is a promotional slide. Read-only; offline behavior is
// cache-or-skip.
type Banner struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
	URL   string `json:"url"`
}

// Topic groups questions under a category. CategoryTitle is
// denormalized for display. LocalImagePath is set only after the asset
// cache has fetched the image; if the file disappears later, readers
// fall back to Image.
type Topic struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	CategoryID     int    `json:"category"`
	CategoryTitle  string `json:"categorytitle"`
	QuestionCount  int    `json:"question_count"`
	TotalScore     int    `json:"total_score"`
	Image          string `json:"image"`
	LocalImagePath string `json:"local_image_path,omitempty"`
}

// Question holds a quiz question with its four options.
// CorrectAnswer is the zero-based index into Options; the wire and the
// local store both carry the one-based form (see CorrectFromWire /
// CorrectToWire).
type Question struct {
	ID            int                 `json:"id"`
	Title         string              `json:"title"`
	Options       [OptionCount]string `json:"options"`
	CorrectAnswer int                 `json:"correct_answer"`
	Explanation   string              `json:"explanation"`
	Link          string              `json:"link"`
	Score         int                 `json:"score"`
	Story         string              `json:"story"`
	TopicID       int                 `json:"topic"`
	CategoryID    int                 `json:"category"`
	Difficulty    int                 `json:"difficulty"`
}

// UserProfile is the single active profile on the device, keyed by the
// device-held current user id. Password is opaque; securing it further
// is out of scope here.
type UserProfile struct {
	ID           int    `json:"id"`
	Fullname     string `json:"fullname"`
	Age          string `json:"age"`
	Relationship string `json:"relationship"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Nickname     string `json:"nickname"`
	Password     string `json:"-"`
	Icon         int    `json:"icon"`
	Badge        int    `json:"badge"`
	Premium      bool   `json:"premium"`
}

// ProgressRecord is one completed quiz waiting in the write-ahead
// queue. ID is assigned locally by the store; every other entity id in
// this package comes from the server. Attempts and NextAttemptAt drive
// the sync engine's retry policy.
type ProgressRecord struct {
	ID             int64     `json:"id"`
	UserID         int       `json:"user_id"`
	QuizID         int       `json:"quiz_id"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	Payload        string    `json:"payload"`
	CreatedAt      time.Time `json:"created_at"`
	Synced         bool      `json:"synced"`
	Attempts       int       `json:"attempts"`
	NextAttemptAt  time.Time `json:"next_attempt_at"`
}

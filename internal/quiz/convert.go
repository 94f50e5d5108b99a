package quiz

import "quiz-pocket/internal/gateway"

// The server and the local store both carry the correct-option index
// one-based; in memory it is zero-based. These two helpers are the
// only place the conversion happens, in either direction.

func CorrectFromWire(wire int) int { return wire - 1 }

func CorrectToWire(index int) int { return index + 1 }

func BuildCategories(raw []gateway.RawCategory) []Category {
	categories := make([]Category, 0, len(raw))
	for _, item := range raw {
		categories = append(categories, Category{
			ID:          item.ID,
			Title:       item.Title,
			Image:       item.Image,
			Parent:      item.Parent,
			Description: item.Description,
		})
	}
	return categories
}

func BuildBanners(raw []gateway.RawBanner) []Banner {
	banners := make([]Banner, 0, len(raw))
	for _, item := range raw {
		banners = append(banners, Banner{
			ID:    item.ID,
			Title: item.Title,
			Image: item.Image,
			URL:   item.URL,
		})
	}
	return banners
}

func BuildTopic(raw gateway.RawTopic) Topic {
	return Topic{
		ID:            raw.ID,
		Title:         raw.Title,
		Description:   raw.Description,
		CategoryID:    raw.Category,
		CategoryTitle: raw.CategoryTitle,
		QuestionCount: raw.QuestionsLength,
		TotalScore:    raw.TotalScore,
		Image:         raw.Image,
	}
}

func BuildTopics(raw []gateway.RawTopic) []Topic {
	topics := make([]Topic, 0, len(raw))
	for _, item := range raw {
		topics = append(topics, BuildTopic(item))
	}
	return topics
}

func BuildQuestion(raw gateway.RawQuestion) Question {
	return Question{
		ID:            raw.ID,
		Title:         raw.Title,
		Options:       [OptionCount]string{raw.Option1, raw.Option2, raw.Option3, raw.Option4},
		CorrectAnswer: CorrectFromWire(raw.Correct),
		Explanation:   raw.Explanation,
		Link:          raw.Link,
		Score:         raw.Score,
		Story:         raw.Story,
		TopicID:       raw.Topic,
		CategoryID:    raw.Category,
		Difficulty:    raw.Difficulty,
	}
}

func BuildQuestions(raw []gateway.RawQuestion) []Question {
	questions := make([]Question, 0, len(raw))
	for _, item := range raw {
		questions = append(questions, BuildQuestion(item))
	}
	return questions
}

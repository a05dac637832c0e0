package view

import (
	"regexp"
	"strings"

	"helios/internal/domain"
)

// Placeholders shown when a story or its recommendations are missing.
const (
	DefaultSource       = "BBC News"
	DefaultSummary      = "Open story for details."
	NoStoryText         = "Story text unavailable for this article."
	NoRecommendations   = "No deterministic recommendations were produced for this headline."
	SourceLinkAvailable = "Open Source"
	SourceLinkMissing   = "No Source URL"
)

// StoryCard is one entry of the story list.
type StoryCard struct {
	ID      string
	Title   string
	Summary string
	Source  string
	Time    string
	Active  bool
}

// StoryCards builds the story list, marking selectedID as active.
func StoryCards(stories []domain.StorySummary, selectedID string) []StoryCard {
	cards := make([]StoryCard, 0, len(stories))
	for _, s := range stories {
		cards = append(cards, StoryCard{
			ID:      s.ID,
			Title:   s.Title,
			Summary: orDefault(s.Summary, DefaultSummary),
			Source:  orDefault(s.Source, DefaultSource),
			Time:    Time(s.PublishedAt),
			Active:  s.ID == selectedID,
		})
	}
	return cards
}

// StoryDetail is the article pane.
type StoryDetail struct {
	Title      string
	Meta       string
	Paragraphs []string
	// Placeholder is set when there are no paragraphs to show.
	Placeholder string
	URL         string
	LinkText    string
}

var paragraphBreak = regexp.MustCompile(`\n\n+`)

// NewStoryDetail builds the article pane for d.
func NewStoryDetail(d domain.StoryDetail) StoryDetail {
	v := StoryDetail{
		Title:    d.Title,
		Meta:     d.Source + " • " + Time(d.PublishedAt),
		URL:      d.URL,
		LinkText: SourceLinkMissing,
	}
	if d.URL != "" {
		v.LinkText = SourceLinkAvailable
	}
	for _, p := range paragraphBreak.Split(d.Body, -1) {
		if p = strings.TrimSpace(p); p != "" {
			v.Paragraphs = append(v.Paragraphs, p)
		}
	}
	if len(v.Paragraphs) == 0 {
		v.Placeholder = NoStoryText
	}
	return v
}

// RecommendationCard is one recommendation with its action badge.
type RecommendationCard struct {
	Entity     string
	Action     domain.Action
	Badge      string
	Confidence string
	Rationale  string
}

// RecommendationCards builds the recommendation list. An empty result means
// NoRecommendations should be shown.
func RecommendationCards(recs []domain.Recommendation) []RecommendationCard {
	cards := make([]RecommendationCard, 0, len(recs))
	for _, r := range recs {
		cards = append(cards, RecommendationCard{
			Entity:     r.Entity,
			Action:     r.Action,
			Badge:      strings.TrimSpace(string(r.Action) + " " + r.SuggestedSymbol),
			Confidence: "Confidence: " + Percent(r.Confidence),
			Rationale:  r.Rationale,
		})
	}
	return cards
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package models

import "time"

// Card is a vocabulary flashcard together with its review scheduling state.
type Card struct {
	ID               string     `json:"id"`
	ProfileID        int64      `json:"profile_id"`
	Language         string     `json:"language"`
	Category         string     `json:"category"`
	FrontText        string     `json:"front_text"`
	BackText         string     `json:"back_text"`
	EaseFactor       float64    `json:"ease_factor"`
	RepetitionNumber int        `json:"repetition_number"`
	IntervalDays     int        `json:"interval_days"`
	NextReviewAt     time.Time  `json:"next_review_at"`
	LastReviewAt     *time.Time `json:"last_review_at"`
	IsNew            bool       `json:"is_new"`
	Mastered         bool       `json:"mastered"`
	Version          int64      `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
}

// IsDue reports whether the card is in the review pipeline and its next review
// date is at or before now. Mastered and new cards are never due.
func (c Card) IsDue(now time.Time) bool {
	return !c.Mastered && !c.IsNew && !c.NextReviewAt.After(now)
}

// CardFilter narrows a card listing. Zero values mean "any".
type CardFilter struct {
	ProfileID int64
	Language  string
	Category  string
	Mastered  *bool
	Limit     int
	Offset    int
}

// ReviewHistory is a single recorded rating.
type ReviewHistory struct {
	ID           int64     `json:"id"`
	CardID       string    `json:"card_id"`
	SubmissionID string    `json:"submission_id,omitempty"`
	Quality      int       `json:"quality"`
	TimeSeconds  float64   `json:"time_seconds"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

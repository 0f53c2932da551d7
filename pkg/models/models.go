package models

import (
	"fmt"
	"time"
)

// Field limits enforced by the service and by the articles table.
const (
	MaxTitleLen = 100
	MaxIntroLen = 300
)

// Article is a blog post. ID and Date are assigned by the store on create
// and never change afterwards.
type Article struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Intro string    `json:"intro"`
	Text  string    `json:"text"`
	Date  time.Time `json:"date"`
}

func (a *Article) String() string {
	return fmt.Sprintf("<Article %d>", a.ID)
}

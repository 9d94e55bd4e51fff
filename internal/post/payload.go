package post

import (
	"time"

	"blog-service/internal/pager"
)

// Form is a post submission, from JSON or a multipart form.
type Form struct {
	Text    string `json:"text" validate:"required"`
	GroupID *uint  `json:"group_id"`
}

type GroupRef struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type View struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Group     *GroupRef `json:"group,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ListResponse struct {
	Page  pager.Page `json:"page"`
	Items []View     `json:"items"`
}

// FormView mirrors a rendered form: current values, field errors, edit flag.
type FormView struct {
	Values map[string]any    `json:"values"`
	Errors map[string]string `json:"errors,omitempty"`
	IsEdit bool              `json:"is_edit"`
}

type CommentView struct {
	ID        uint      `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is published when a post is created and a broker is configured.
type Event struct {
	ID        uint      `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func ToView(p Post) View {
	v := View{
		ID:        p.ID,
		Text:      p.Text,
		Author:    p.Author.Username,
		Image:     p.ImageURL,
		CreatedAt: p.CreatedAt,
	}
	if p.Group != nil {
		v.Group = &GroupRef{Title: p.Group.Title, Slug: p.Group.Slug}
	}
	return v
}

func Views(posts []Post) []View {
	out := make([]View, len(posts))
	for i := range posts {
		out[i] = ToView(posts[i])
	}
	return out
}

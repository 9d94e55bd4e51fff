package comment

import (
	"blog-service/internal/post"
)

type Service interface {
	EnsurePost(postID uint) error
	Create(authorID, postID uint, text string) (*Comment, error)
	ListByPost(postID uint) ([]post.CommentView, error)
}

type service struct {
	repo  Repository
	posts post.Repository
}

func NewService(r Repository, posts post.Repository) Service {
	return &service{repo: r, posts: posts}
}

func (s *service) EnsurePost(postID uint) error {
	_, err := s.posts.GetByID(postID)
	return err
}

func (s *service) Create(authorID, postID uint, text string) (*Comment, error) {
	if err := s.EnsurePost(postID); err != nil {
		return nil, err
	}
	c := &Comment{Text: text, AuthorID: authorID, PostID: postID}
	if err := s.repo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByPost satisfies post.CommentSource for the detail view.
func (s *service) ListByPost(postID uint) ([]post.CommentView, error) {
	comments, err := s.repo.ListByPost(postID)
	if err != nil {
		return nil, err
	}
	out := make([]post.CommentView, len(comments))
	for i, c := range comments {
		out[i] = post.CommentView{
			ID:        c.ID,
			Author:    c.Author.Username,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		}
	}
	return out, nil
}

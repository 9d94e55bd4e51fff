package post

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"blog-service/internal/group"
	"blog-service/internal/pager"
)

// EventPublisher receives post-created events; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, key string, message []byte) error
}

// ErrUnknownGroup marks a submission referencing a group that does not
// exist; handlers render it as a field error rather than a server error.
var ErrUnknownGroup = errors.New("group does not exist")

type Service interface {
	Create(ctx context.Context, authorID uint, in Form, imageURL string) (*Post, error)
	GetByID(id uint) (*Post, error)
	Edit(id uint, in Form, imageURL string) (*Post, error)

	ListPage(page int) ([]Post, pager.Page, error)
	ListGroupPage(groupID uint, page int) ([]Post, pager.Page, error)
	ListAuthorPage(authorID uint, page int) ([]Post, pager.Page, error)
	ListAuthorsPage(authorIDs []uint, page int) ([]Post, pager.Page, error)
}

type service struct {
	repo   Repository
	groups group.Repository
	events EventPublisher
}

func NewService(r Repository, groups group.Repository, events EventPublisher) Service {
	return &service{repo: r, groups: groups, events: events}
}

func (s *service) resolveGroup(id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.groups.GetByID(*id); err != nil {
		return ErrUnknownGroup
	}
	return nil
}

func (s *service) Create(ctx context.Context, authorID uint, in Form, imageURL string) (*Post, error) {
	if err := s.resolveGroup(in.GroupID); err != nil {
		return nil, err
	}
	p := &Post{
		Text:     in.Text,
		AuthorID: authorID,
		GroupID:  in.GroupID,
		ImageURL: imageURL,
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}
	created, err := s.repo.GetByID(p.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, created)
	return created, nil
}

func (s *service) publish(ctx context.Context, p *Post) {
	if s.events == nil {
		return
	}
	b, err := json.Marshal(Event{
		ID: p.ID, Author: p.Author.Username, Text: p.Text, CreatedAt: p.CreatedAt,
	})
	if err != nil {
		return
	}
	_ = s.events.Publish(ctx, strconv.FormatUint(uint64(p.ID), 10), b)
}

func (s *service) GetByID(id uint) (*Post, error) {
	return s.repo.GetByID(id)
}

func (s *service) Edit(id uint, in Form, imageURL string) (*Post, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.resolveGroup(in.GroupID); err != nil {
		return nil, err
	}
	p.Text = in.Text
	p.GroupID = in.GroupID
	if imageURL != "" {
		p.ImageURL = imageURL
	}
	if err := s.repo.Update(p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *service) ListPage(page int) ([]Post, pager.Page, error) {
	total, err := s.repo.CountAll()
	if err != nil {
		return nil, pager.Page{}, err
	}
	pg, limit, offset := pager.Build(total, page)
	posts, err := s.repo.ListAll(limit, offset)
	return posts, pg, err
}

func (s *service) ListGroupPage(groupID uint, page int) ([]Post, pager.Page, error) {
	total, err := s.repo.CountByGroup(groupID)
	if err != nil {
		return nil, pager.Page{}, err
	}
	pg, limit, offset := pager.Build(total, page)
	posts, err := s.repo.ListByGroup(groupID, limit, offset)
	return posts, pg, err
}

func (s *service) ListAuthorPage(authorID uint, page int) ([]Post, pager.Page, error) {
	total, err := s.repo.CountByAuthor(authorID)
	if err != nil {
		return nil, pager.Page{}, err
	}
	pg, limit, offset := pager.Build(total, page)
	posts, err := s.repo.ListByAuthor(authorID, limit, offset)
	return posts, pg, err
}

func (s *service) ListAuthorsPage(authorIDs []uint, page int) ([]Post, pager.Page, error) {
	total, err := s.repo.CountByAuthors(authorIDs)
	if err != nil {
		return nil, pager.Page{}, err
	}
	pg, limit, offset := pager.Build(total, page)
	posts, err := s.repo.ListByAuthors(authorIDs, limit, offset)
	return posts, pg, err
}

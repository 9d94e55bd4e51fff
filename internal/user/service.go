package user

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(username, email, password string) (*User, error)
	Login(username, password string) (*User, error)
	GetByUsername(username string) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(r Repository) Service {
	return &service{repo: r}
}

func (s *service) Register(username, email, password string) (*User, error) {
	if exist, _ := s.repo.GetByUsername(username); exist != nil {
		return nil, errors.New("user exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("hash fail")
	}
	return s.repo.Create(&User{
		Username: username, Email: email, PassHash: string(hash),
	})
}

func (s *service) Login(username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, errors.New("wrong credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PassHash), []byte(password)) != nil {
		return nil, errors.New("wrong credentials")
	}
	return u, nil
}

func (s *service) GetByUsername(username string) (*User, error) {
	return s.repo.GetByUsername(username)
}

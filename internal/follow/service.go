package follow

type Service interface {
	Follow(userID, authorID uint) error
	Unfollow(userID, authorID uint) error
	IsFollowing(userID, authorID uint) (bool, error)
	FollowedAuthorIDs(userID uint) ([]uint, error)
}

type service struct{ repo Repository }

func NewService(r Repository) Service { return &service{repo: r} }

// Follow is a no-op for self-follow and for an existing edge.
func (s *service) Follow(userID, authorID uint) error {
	if userID == authorID {
		return nil
	}
	return s.repo.Create(userID, authorID)
}

// Unfollow is a no-op when the edge does not exist.
func (s *service) Unfollow(userID, authorID uint) error {
	return s.repo.Delete(userID, authorID)
}

func (s *service) IsFollowing(userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.repo.Exists(userID, authorID)
}

func (s *service) FollowedAuthorIDs(userID uint) ([]uint, error) {
	return s.repo.AuthorIDs(userID)
}

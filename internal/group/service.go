package group

type Service interface {
	Create(title, slug, description string) (*Group, error)
	GetBySlug(slug string) (*Group, error)
	GetByID(id uint) (*Group, error)
	ListAll() ([]Group, error)
}

type service struct{ repo Repository }

func NewService(r Repository) Service { return &service{repo: r} }

func (s *service) Create(title, slug, description string) (*Group, error) {
	g := &Group{Title: title, Slug: slug, Description: description}
	if err := s.repo.Create(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *service) GetBySlug(slug string) (*Group, error) { return s.repo.GetBySlug(slug) }
func (s *service) GetByID(id uint) (*Group, error)       { return s.repo.GetByID(id) }
func (s *service) ListAll() ([]Group, error)             { return s.repo.ListAll() }

package service

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
}

// CategoryService defines the interface for business logic related to Category
type CategoryService interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*model.Category, error)
	GetCategory(ctx context.Context, id uint) (*model.Category, error)
	GetAllCategories(ctx context.Context) ([]model.Category, error)
	SearchCategories(ctx context.Context, text string) ([]model.Category, error)
	UpdateCategory(ctx context.Context, id uint, req UpdateCategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService returns a new instance of CategoryService
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*model.Category, error) {
	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.GetAll(ctx)
}

func (s *categoryService) SearchCategories(ctx context.Context, text string) ([]model.Category, error) {
	return s.repo.Search(ctx, text)
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uint, req UpdateCategoryRequest) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrCategoryNotFound
		}
		return nil, err
	}

	category.Name = req.Name
	category.Description = req.Description

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrCategoryNotFound
	}
	return err
}

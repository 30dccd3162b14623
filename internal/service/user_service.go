package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{UserRepo: userRepo, Storage: storage}
}

type ProfileUpdateRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *UserService) UpdateProfile(userID uint, req ProfileUpdateRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	user.Name = req.Name
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar validates the file is an image, stores it under a random
// object name and points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, originalName string, reader io.Reader, size int64) (string, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrUserNotFound
		}
		return "", err
	}

	ext := filepath.Ext(originalName)
	filename := fmt.Sprintf("avatars/%s%s", uuid.New().String(), ext)

	url, err := s.Storage.Upload(ctx, filename, reader, size, util.MimeImage)
	if err != nil {
		return "", err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

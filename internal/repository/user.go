package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"TimedIn/internal/model"
	"TimedIn/storage/database"
)

// UserRepository 用户存取接口
type UserRepository interface {
	// GetByEmail 根据邮箱查询，不存在时返回 (nil, nil)
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByPublicID 根据对外 ID 查询，不存在时返回 (nil, nil)
	GetByPublicID(ctx context.Context, publicID int64) (*model.User, error)

	// Create 创建用户，邮箱唯一索引冲突时返回数据库错误
	Create(ctx context.Context, user *model.User) error

	// UpdateFields 按字段更新
	UpdateFields(ctx context.Context, userID int64, fields map[string]interface{}) error

	// ListByRole 按角色返回用户列表
	ListByRole(ctx context.Context, role model.UserRole) ([]*model.User, error)

	// ListByIDs 按数据库主键批量查询
	ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	if db == nil {
		db = database.DB()
	}
	return &userRepository{db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByPublicID(ctx context.Context, publicID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) UpdateFields(ctx context.Context, userID int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(fields).Error
}

func (r *userRepository) ListByRole(ctx context.Context, role model.UserRole) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*model.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/config"
	"github.com/jodolyekim/Dotori/internal/model"
	"github.com/jodolyekim/Dotori/internal/model/dto"
	"github.com/jodolyekim/Dotori/internal/pkg/jwt"
	"github.com/jodolyekim/Dotori/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUsernameExists     = errors.New("用户名已被使用")
	ErrPhoneExists        = errors.New("手机号已被使用")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
)

type AuthService struct {
	userRepo          *repository.UserRepository
	membershipService *MembershipService
	cfg               *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, membershipService *MembershipService, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		membershipService: membershipService,
		cfg:               cfg,
	}
}

// Register 用户注册，同时分配 BASIC 会员
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 检查邮箱是否存在
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	// 检查用户名是否存在
	exists, err = s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	var phone *string
	if p := strings.TrimSpace(req.Phone); p != "" {
		exists, err = s.userRepo.ExistsByPhone(ctx, p)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrPhoneExists
		}
		phone = &p
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	passwordStr := string(hashedPassword)

	user := &model.User{
		Username:      req.Username,
		Email:         &email,
		Phone:         phone,
		PasswordHash:  &passwordStr,
		EmailVerified: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if _, err := s.membershipService.GetOrCreate(ctx, user.ID); err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		UserID: user.ID,
	}, nil
}

// Login 用户登录
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 验证密码
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 生成 Token
	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	info, err := s.buildUserInfo(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  info,
	}, nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) buildUserInfo(ctx context.Context, user *model.User) (*dto.UserInfo, error) {
	info := &dto.UserInfo{
		ID:       user.ID,
		Username: user.Username,
	}

	if user.Email != nil {
		info.Email = *user.Email
	}

	plan, err := s.membershipService.GetUserPlan(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	info.PlanCode = plan.Code

	return info, nil
}

package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ItalcolColombia/miit-api-sub000/internal/config"
	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
	"github.com/ItalcolColombia/miit-api-sub000/internal/worker"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
	// RecuperarClave issues a reset token and mails it asynchronously.
	RecuperarClave(ctx context.Context, req dto.RecuperarClaveRequest) error
	RestablecerClave(ctx context.Context, req dto.RestablecerClaveRequest) error
}

type authService struct {
	repo       repository.UsuarioRepository
	cfg        *config.Config
	dispatcher *worker.Dispatcher
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config, dispatcher *worker.Dispatcher) AuthService {
	return &authService{repo: repo, cfg: cfg, dispatcher: dispatcher}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByNickName(ctx, req.NickName)
	if err != nil {
		return nil, errors.New("credenciales inválidas")
	}
	if !user.Estado {
		return nil, errors.New("credenciales inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Clave), []byte(req.Clave)); err != nil {
		return nil, errors.New("credenciales inválidas")
	}
	return s.buildLoginResponse(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token inválido o expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("claims inválidos")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("token mal formado")
	}
	uid, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return nil, errors.New("token mal formado")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Estado {
		return nil, errors.New("usuario no encontrado o inactivo")
	}
	return s.buildLoginResponse(user)
}

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Clave), 12)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		NickName: req.NickName,
		FullName: req.FullName,
		Cedula:   req.Cedula,
		Email:    req.Email,
		Clave:    string(hash),
		RolID:    req.RolID,
		Estado:   true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) RecuperarClave(ctx context.Context, req dto.RecuperarClaveRequest) error {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		// No revelar si el correo existe.
		return nil
	}

	token := uuid.NewString()
	if err := s.repo.SetRecuperacion(ctx, user.ID, &token); err != nil {
		return err
	}

	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
		ToEmail: user.Email,
		Subject: "Recuperación de contraseña",
		Body:    "Se solicitó un restablecimiento de contraseña.\n\nToken: " + token + "\n\nSi no fue usted, ignore este correo.",
	})
}

func (s *authService) RestablecerClave(ctx context.Context, req dto.RestablecerClaveRequest) error {
	// El token de recuperación es de un solo uso.
	users, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		u := &users[i]
		if u.Recuperacion != nil && *u.Recuperacion == req.Token {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Clave), 12)
			if err != nil {
				return err
			}
			return s.repo.UpdateClave(ctx, u.ID, string(hash))
		}
	}
	return wrap(ErrOperacionInvalida, "token de recuperación inválido")
}

func (s *authService) buildLoginResponse(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	rol := ""
	if user.Rol != nil {
		rol = user.Rol.Nombre
	}
	claims := jwt.MapClaims{
		"user_id":   strconv.FormatInt(user.ID, 10),
		"nick_name": user.NickName,
		"rol":       rol,
		"exp":       time.Now().Add(duration).Unix(),
		"iat":       time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	rol := ""
	if u.Rol != nil {
		rol = u.Rol.Nombre
	}
	return dto.UsuarioResponse{
		ID:       u.ID,
		NickName: u.NickName,
		FullName: u.FullName,
		Email:    u.Email,
		Rol:      rol,
		Estado:   u.Estado,
	}
}

package services

import (
	"messaging_backend/internal/auth"
	"messaging_backend/internal/email"
	"messaging_backend/internal/repositories"
)

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	AuthService    AuthService
	MessageService MessageService
	UserService    UserService
	Tokens         *auth.TokenIssuer
}

// Repositories groups the stateless repositories the services share.
type Repositories struct {
	Users         repositories.UserRepository
	Roles         repositories.RoleRepository
	RefreshTokens repositories.RefreshTokenRepository
	Messages      repositories.MessageRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Users:         repositories.NewUserRepository(),
		Roles:         repositories.NewRoleRepository(),
		RefreshTokens: repositories.NewRefreshTokenRepository(),
		Messages:      repositories.NewMessageRepository(),
	}
}

// NewServiceContainer wires the services on top of repos.
func NewServiceContainer(
	repos *Repositories,
	tokens *auth.TokenIssuer,
	emailProvider email.Provider,
	notifier Notifier,
	authCfg AuthServiceConfig,
) *ServiceContainer {
	return &ServiceContainer{
		AuthService:    NewAuthService(repos.Users, repos.Roles, repos.RefreshTokens, tokens, emailProvider, authCfg),
		MessageService: NewMessageService(repos.Messages, repos.Users, notifier),
		UserService:    NewUserService(repos.Users, repos.Roles),
		Tokens:         tokens,
	}
}

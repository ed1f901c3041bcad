// Package main runs the RBAC service without a database using in-memory repositories.
// This is useful for:
// - Quick development and testing
// - Demo/prototype environments
// - Learning the API without database setup
//
// Note: All data is lost when the server stops. For production, use cmd/rbac with PostgreSQL.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"

	"github.com/tendant/simple-rbac/pkg/bootstrap"
	"github.com/tendant/simple-rbac/pkg/client"
	"github.com/tendant/simple-rbac/pkg/iam"
	iamapi "github.com/tendant/simple-rbac/pkg/iam/api"
	"github.com/tendant/simple-rbac/pkg/login"
	"github.com/tendant/simple-rbac/pkg/role"
	roleapi "github.com/tendant/simple-rbac/pkg/role/api"
)

type Config struct {
	JwtSecret string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Seed      bootstrap.SeedConfig
}

func main() {
	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read config from env", "error", err)
		os.Exit(1)
	}

	roleRepo := role.NewInMemoryRoleRepository()
	roleService := role.NewRoleService(roleRepo)
	hasher := login.NewBcryptHasher()
	iamService := iam.NewIamService(iam.NewInMemoryUserRepository(roleRepo), roleService, hasher)

	seeder := bootstrap.NewSeeder(roleService, iamService, cfg.Seed)
	if err := seeder.Seed(context.Background()); err != nil {
		slog.Error("Failed to seed initial data", "error", err)
		os.Exit(1)
	}

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JwtSecret), nil)

	roleHandle := roleapi.NewHandle(roleService)
	iamHandle := iamapi.NewHandle(iamService)

	myApp := app.Default()
	myApp.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(client.AuthUserMiddleware)

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(client.AdminRoleMiddleware)
			roleHandle.RegisterRoutes(r)
			iamHandle.RegisterAdminRoutes(r)
		})

		r.Route("/api/user", func(r chi.Router) {
			iamHandle.RegisterProfileRoutes(r)
		})
	})
	myApp.Run()
}

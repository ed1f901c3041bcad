package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/tendant/simple-rbac/pkg/bootstrap"
	"github.com/tendant/simple-rbac/pkg/client"
	"github.com/tendant/simple-rbac/pkg/config"
	"github.com/tendant/simple-rbac/pkg/iam"
	iamapi "github.com/tendant/simple-rbac/pkg/iam/api"
	"github.com/tendant/simple-rbac/pkg/login"
	"github.com/tendant/simple-rbac/pkg/role"
	roleapi "github.com/tendant/simple-rbac/pkg/role/api"
)

// JwtConfig configures verification of the tokens the external
// authentication gateway issues. This service never issues tokens.
type JwtConfig struct {
	Secret string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
}

type Config struct {
	Database config.DatabaseConfig
	Jwt      JwtConfig
	Seed     bootstrap.SeedConfig
}

func main() {
	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read config from env", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbConfig := cfg.Database.ToDbConfig()
	pool, err := dbutils.NewDbPool(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(1)
	}
	defer pool.Close()

	roleService := role.NewRoleService(role.NewPostgresRoleRepository(pool))
	hasher := login.NewBcryptHasher()
	iamService := iam.NewIamService(iam.NewPostgresUserRepository(pool), roleService, hasher)

	// Seed roles and first accounts on an empty store. A missing required
	// role is a configuration fault and aborts startup.
	seeder := bootstrap.NewSeeder(roleService, iamService, cfg.Seed)
	if err := seeder.Seed(ctx); err != nil {
		slog.Error("Failed to seed initial data", "error", err)
		os.Exit(1)
	}

	myApp := app.Default()
	Routes(myApp.R, cfg.Jwt, roleService, iamService)
	myApp.Run()
}

// Routes wires the HTTP surface: an admin-only management API and a
// self-service profile read, both behind gateway-issued token
// verification.
func Routes(r *chi.Mux, jwtConfig JwtConfig, roleService *role.RoleService, iamService *iam.IamService) {
	tokenAuth := jwtauth.New("HS256", []byte(jwtConfig.Secret), nil)

	roleHandle := roleapi.NewHandle(roleService)
	iamHandle := iamapi.NewHandle(iamService)

	r.Group(func(r chi.Router) {
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
}

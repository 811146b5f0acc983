package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/JuanPaGargoo/pos-core-api/internal/audit"
	"github.com/JuanPaGargoo/pos-core-api/internal/auth"
	"github.com/JuanPaGargoo/pos-core-api/internal/config"
	"github.com/JuanPaGargoo/pos-core-api/internal/directory"
	"github.com/JuanPaGargoo/pos-core-api/internal/httpapi"
	"github.com/JuanPaGargoo/pos-core-api/internal/obs"
	"github.com/JuanPaGargoo/pos-core-api/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		Issuer:        "pos-core-api",
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	var (
		authStore  auth.Store
		dirStore   directory.Store
		auditStore audit.Store
		probe      httpapi.ReadyProbe
		pgStore    *pg.Store
	)
	if cfg.PGDSN != "" {
		pgStore, err = pg.Open(cfg.PGDSN)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		defer pgStore.Close()
		authStore = pgStore
		dirStore = pgStore
		auditStore = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		log.Println("POS_PG_DSN not set, running on in-memory stores")
		memAuth := auth.NewMemoryStore()
		memDir := directory.NewMemoryStore()
		memAuth.BranchName = memDir.BranchName
		authStore = memAuth
		dirStore = memDir
		auditStore = audit.NewMemoryStore()
	}

	sessions := auth.NewService(authStore, auth.NewMemoryRegistry(), issuer)
	rbac, err := auth.NewRBACService(authStore)
	if err != nil {
		log.Fatalf("rbac service: %v", err)
	}
	dir, err := directory.NewService(dirStore)
	if err != nil {
		log.Fatalf("directory service: %v", err)
	}
	trail := audit.NewTrail(auditStore)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sessions.EnsureBuiltins(startupCtx); err != nil {
		cancelStartup()
		log.Fatalf("ensure permission catalog: %v", err)
	}
	if err := bootstrapAdmin(startupCtx, rbac); err != nil {
		cancelStartup()
		log.Fatalf("bootstrap admin: %v", err)
	}
	cancelStartup()

	api := httpapi.New(httpapi.Options{
		Sessions:   sessions,
		RBAC:       rbac,
		Directory:  dir,
		Trail:      trail,
		ReadyProbe: probe,
		Version:    version,
		RatePerSec: float64(cfg.RatePerSec),
		RateBurst:  cfg.RateBurst,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting pos-core-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		grpcSrv = grpc.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcSrv, httpapi.NewGRPCServer(httpapi.NewDBReadiness(probe)))
		log.Printf("Starting gRPC health on %s", cfg.GRPCAddr)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				log.Fatalf("grpc serve: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	log.Println("Stopped")
}

// bootstrapAdmin creates the first administrator when the database is empty.
// Credentials come from the environment so no password hash lives in seeds.
func bootstrapAdmin(ctx context.Context, rbac *auth.RBACService) error {
	username := strings.TrimSpace(os.Getenv("POS_BOOTSTRAP_ADMIN_USERNAME"))
	password := os.Getenv("POS_BOOTSTRAP_ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}
	if _, total, err := rbac.ListUsers(ctx, 1, 1); err != nil {
		return err
	} else if total > 0 {
		return nil
	}

	user, err := rbac.CreateUser(ctx, auth.CreateUserInput{
		Name:     "Administrator",
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	role, err := findOrCreateAdminRole(ctx, rbac)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(auth.BuiltinPermissions))
	for _, p := range auth.BuiltinPermissions {
		keys = append(keys, p.Key)
	}
	if err := rbac.SetRolePermissions(ctx, role.ID, keys); err != nil {
		return err
	}
	if err := rbac.SetUserRoles(ctx, user.ID, []string{role.ID}); err != nil {
		return err
	}
	log.Printf("Bootstrapped admin user %q", username)
	return nil
}

func findOrCreateAdminRole(ctx context.Context, rbac *auth.RBACService) (auth.Role, error) {
	roles, _, err := rbac.ListRoles(ctx, 1, 200)
	if err != nil {
		return auth.Role{}, err
	}
	for _, r := range roles {
		if r.Name == "admin" {
			return r, nil
		}
	}
	return rbac.CreateRole(ctx, "admin", "Full access")
}

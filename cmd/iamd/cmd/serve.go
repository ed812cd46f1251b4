package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/iamcore/internal/cache"
	"github.com/terraconstructs/iamcore/internal/credentials"
	"github.com/terraconstructs/iamcore/internal/db/bunx"
	"github.com/terraconstructs/iamcore/internal/gate"
	"github.com/terraconstructs/iamcore/internal/legacypolicy"
	"github.com/terraconstructs/iamcore/internal/repository"
	"github.com/terraconstructs/iamcore/internal/resolver"
	"github.com/terraconstructs/iamcore/internal/revocation"
	"github.com/terraconstructs/iamcore/internal/server"
	"github.com/terraconstructs/iamcore/internal/service"
	"github.com/terraconstructs/iamcore/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the iamd HTTP server",
	Long:  `Starts the chi-based HTTP server exposing /healthz and the STS/authorization surface.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL, bunx.PoolConfig{MinConns: cfg.DBPoolMin, MaxConns: cfg.DBPoolMax})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		users := repository.NewBunUserRepository(db)
		roles := repository.NewBunRoleRepository(db)
		groupMemberships := repository.NewBunGroupMembershipRepository(db)
		userRoleAssignments := repository.NewBunUserRoleAssignmentRepository(db)
		attachments := repository.NewBunAttachmentRepository(db)
		permissions := repository.NewBunPermissionRepository(db)
		sessions := repository.NewBunSessionRepository(db)
		revokedTokens := repository.NewBunRevokedTokenRepository(db)

		issuer := credentials.NewIssuer(cfg.SigningSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
		sessionMgr := session.NewManager(sessions)
		rev := revocation.NewStore(revokedTokens, cfg.RevocationHotTimeout)

		membership := cache.NewMembershipCache(groupMemberships, userRoleAssignments, time.Minute)
		docCache, err := cache.NewPolicyDocumentCache(1024)
		if err != nil {
			return fmt.Errorf("failed to build policy document cache: %w", err)
		}

		res := resolver.NewPolicyResolver(attachments, membership, docCache).
			WithLegacyCompiler(legacypolicy.NewCompiler(permissions))

		g := gate.New(rev, membership, roles, res)
		sts := service.NewSTSService(users, roles, issuer, sessionMgr, rev)

		cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
		defer cancelCleanup()
		go rev.RunCleanupLoop(cleanupCtx, cfg.RevocationCleanupInterval)

		r := server.NewRouter(server.Options{
			Gate:        g,
			STS:         sts,
			Credentials: issuer,
			Revocation:  rev,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			log.Printf("Server URL: %s", cfg.ServerURL)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

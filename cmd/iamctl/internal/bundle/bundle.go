// Package bundle centralizes iamctl's direct-to-database service wiring,
// the same way cmd/gridapi/cmd/cmdutil centralized service construction
// for CLI commands. iamctl operates directly against the database rather
// than through iamd's HTTP surface, since the REST surface is deliberately
// thin and does not cover every administrative operation.
package bundle

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/iamcore/internal/cache"
	"github.com/terraconstructs/iamcore/internal/config"
	"github.com/terraconstructs/iamcore/internal/credentials"
	"github.com/terraconstructs/iamcore/internal/db/bunx"
	"github.com/terraconstructs/iamcore/internal/filter"
	"github.com/terraconstructs/iamcore/internal/gate"
	"github.com/terraconstructs/iamcore/internal/legacypolicy"
	"github.com/terraconstructs/iamcore/internal/repository"
	"github.com/terraconstructs/iamcore/internal/resolver"
	"github.com/terraconstructs/iamcore/internal/revocation"
	"github.com/terraconstructs/iamcore/internal/service"
	"github.com/terraconstructs/iamcore/internal/session"
)

// Bundle bundles every admin-facing service with the underlying DB
// connection so callers can close it when done.
type Bundle struct {
	DB *bun.DB

	Accounts *service.AccountService
	Users    *service.UserService
	Groups   *service.GroupService
	Policies *service.PolicyService
	Roles    *service.RoleService
	STS      *service.STSService
	Gate     *gate.Gate
	Rev      *revocation.Store
}

// Close releases the underlying database connection.
func (b *Bundle) Close() {
	if b == nil || b.DB == nil {
		return
	}
	bunx.Close(b.DB)
}

// New wires repositories and every service iamctl's subcommands need.
func New(cfg *config.Config) (*Bundle, error) {
	db, err := bunx.NewDB(cfg.DatabaseURL, bunx.PoolConfig{MinConns: cfg.DBPoolMin, MaxConns: cfg.DBPoolMax})
	if err != nil {
		return nil, err
	}

	accounts := repository.NewBunAccountRepository(db)
	users := repository.NewBunUserRepository(db)
	groups := repository.NewBunGroupRepository(db)
	groupMemberships := repository.NewBunGroupMembershipRepository(db)
	roles := repository.NewBunRoleRepository(db)
	userRoleAssignments := repository.NewBunUserRoleAssignmentRepository(db)
	policies := repository.NewBunPolicyRepository(db)
	attachments := repository.NewBunAttachmentRepository(db)
	permissions := repository.NewBunPermissionRepository(db)
	sessions := repository.NewBunSessionRepository(db)
	revokedTokens := repository.NewBunRevokedTokenRepository(db)

	filterEval := filter.New()
	issuer := credentials.NewIssuer(cfg.SigningSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	sessionMgr := session.NewManager(sessions)
	rev := revocation.NewStore(revokedTokens, cfg.RevocationHotTimeout)

	membership := cache.NewMembershipCache(groupMemberships, userRoleAssignments, time.Minute)
	docCache, err := cache.NewPolicyDocumentCache(1024)
	if err != nil {
		bunx.Close(db)
		return nil, err
	}
	res := resolver.NewPolicyResolver(attachments, membership, docCache).
		WithLegacyCompiler(legacypolicy.NewCompiler(permissions))

	return &Bundle{
		DB:       db,
		Accounts: service.NewAccountService(accounts),
		Users:    service.NewUserService(users),
		Groups:   service.NewGroupService(groups, groupMemberships, filterEval),
		Policies: service.NewPolicyService(policies, attachments, filterEval),
		Roles:    service.NewRoleService(roles, userRoleAssignments, filterEval),
		STS:      service.NewSTSService(users, roles, issuer, sessionMgr, rev),
		Gate:     gate.New(rev, membership, roles, res),
		Rev:      rev,
	}, nil
}

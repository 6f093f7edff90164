package cli

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/plotline/plotline/internal/auth"
	"github.com/plotline/plotline/internal/domain"
	"github.com/plotline/plotline/internal/hub"
	"github.com/plotline/plotline/internal/jobs"
	"github.com/plotline/plotline/internal/staging"
	"github.com/plotline/plotline/internal/staging/s3store"
	"github.com/plotline/plotline/internal/workflow"
)

// serviceScopes cover staging and job submission; userScopes cover reading
// and writing the document hierarchy.
var (
	serviceScopes = []string{"code:all", "data:write", "data:read", "bucket:create", "bucket:read"}
	userScopes    = []string{"data:read", "data:write", "data:create"}
)

// Runtime is the wired object graph behind the CLI commands.
type Runtime struct {
	Tokens       *auth.TokenStore
	Hierarchy    *hub.Client
	TreeBuilder  *hub.TreeBuilder
	Orchestrator *workflow.Orchestrator
}

// buildTokenStore wires the identity exchanger and interactive login. It is
// enough on its own for the login and tree commands.
func buildTokenStore(config *Config) *auth.TokenStore {
	exchanger := auth.NewOAuthExchanger(auth.OAuthExchangerConfig{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		AuthURL:      config.AuthURL,
		TokenURL:     config.TokenURL,
		RedirectURL:  config.CallbackURL,
		UserScopes:   userScopes,
	})

	login := auth.NewInteractiveLogin(exchanger, auth.InteractiveLoginConfig{
		ListenAddr:  config.CallbackListenAddr,
		CallbackURL: config.CallbackURL,
		Timeout:     config.LoginTimeout,
	})

	return auth.NewTokenStore(auth.TokenStoreDependencies{
		Exchanger:     exchanger,
		Authorizer:    login,
		ServiceScopes: serviceScopes,
	})
}

func buildHierarchy(config *Config, tokens *auth.TokenStore) (*hub.Client, *hub.TreeBuilder) {
	client := hub.NewClient(hub.ClientDependencies{
		BaseURL: config.HierarchyBaseURL,
		Tokens:  tokens.UserCredential,
	})
	return client, hub.NewTreeBuilder(client)
}

// BuildRuntime creates and wires up all workflow dependencies.
func BuildRuntime(ctx context.Context, config *Config, inputPath string) (*Runtime, error) {
	log.Info().Msg("Building workflow dependencies")

	tokens := buildTokenStore(config)
	hierarchy, treeBuilder := buildHierarchy(config, tokens)

	var signer domain.ActivitySigner
	var err error
	if config.SigningKey != "" {
		signer, err = auth.NewActivitySignerFromKey(config.SigningKey)
	} else {
		signer, err = auth.NewActivitySigner()
	}
	if err != nil {
		return nil, err
	}

	store, err := s3store.NewStore(ctx, s3store.Config{
		Region:          config.Region,
		Endpoint:        config.S3Endpoint,
		AccessKeyID:     config.S3AccessKeyID,
		SecretAccessKey: config.S3SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}

	admin := jobs.NewAdminClient(jobs.AdminClientDependencies{
		BaseURL: config.AdminBaseURL,
		Tokens:  tokens.ServiceCredential,
	})

	orchestrator := workflow.NewOrchestrator(workflow.Dependencies{
		ServiceTokens: tokens.ServiceCredential,
		UserTokens:    tokens.UserCredential,
		Signer:        signer,
		Admin:         admin,
		Uploader:      staging.NewUploader(store),
		Submitter:     jobs.NewSubmitter(config.JobChannelURL),
		Reconciler:    hub.NewReconciler(hierarchy, config.ProjectID),
		Tree:          treeBuilder,
		Config: workflow.Config{
			ClientID:        config.ClientID,
			OwnerName:       config.OwnerName,
			ActivityID:      config.ActivityID,
			Bucket:          config.Bucket,
			InputPath:       inputPath,
			ResultExtension: config.ResultExtension,
			FolderID:        config.FolderID,
			SignedURLTTL:    config.SignedURLTTL,
			ReportDir:       config.ReportDir,
		},
	})

	return &Runtime{
		Tokens:       tokens,
		Hierarchy:    hierarchy,
		TreeBuilder:  treeBuilder,
		Orchestrator: orchestrator,
	}, nil
}

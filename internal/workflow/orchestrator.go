// Package workflow runs the plot pipeline end to end: credentials, staging,
// job submission, and reconciliation of the result into the document tree.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/plotline/plotline/internal/domain"
	"github.com/plotline/plotline/internal/jobs"
	"github.com/plotline/plotline/internal/staging"
)

type stager interface {
	Stage(ctx context.Context, bucket, localPath, resultName string, ttl time.Duration) (staging.StagedRun, error)
}

type jobSubmitter interface {
	Submit(ctx context.Context, descriptor domain.JobDescriptor, authorization string) (domain.JobStatusEvent, error)
}

type reconciler interface {
	CreateOrVersion(ctx context.Context, folderID, displayName string, ref domain.StorageObjectRef) (string, error)
}

type treeBuilder interface {
	Build(ctx context.Context) ([]domain.TreeNode, error)
}

// Config carries the per-run workflow parameters.
type Config struct {
	ClientID   string
	OwnerName  string
	ActivityID string

	Bucket          string
	InputPath       string
	ResultExtension string

	FolderID     string
	SignedURLTTL time.Duration

	// ReportDir is where diagnostic reports are written. Defaults to the
	// working directory.
	ReportDir string
}

// Result is what a completed run produced.
type Result struct {
	Status     domain.JobStatus
	ItemID     string
	ReportPath string
	Tree       []domain.TreeNode
}

// Orchestrator drives one workflow run. A single logical instance per run;
// all suspension points (interactive login, status stream) go through the
// run context.
type Orchestrator struct {
	serviceTokens domain.CredentialSource
	userTokens    domain.CredentialSource
	signer        domain.ActivitySigner
	admin         domain.ExecutionAdmin
	uploader      stager
	submitter     jobSubmitter
	reconciler    reconciler
	tree          treeBuilder
	httpClient    *http.Client
	cfg           Config
}

type Dependencies struct {
	ServiceTokens domain.CredentialSource
	UserTokens    domain.CredentialSource
	Signer        domain.ActivitySigner
	Admin         domain.ExecutionAdmin
	Uploader      stager
	Submitter     jobSubmitter
	Reconciler    reconciler

	// Tree is optional; when set, the hierarchy is re-read after
	// reconciliation to confirm the item is visible.
	Tree treeBuilder

	// HTTPClient is used for report downloads. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	Config Config
}

func NewOrchestrator(deps Dependencies) *Orchestrator {
	cfg := deps.Config
	if cfg.ReportDir == "" {
		cfg.ReportDir = "."
	}
	if cfg.ResultExtension == "" {
		cfg.ResultExtension = "pdf"
	}

	return &Orchestrator{
		serviceTokens: deps.ServiceTokens,
		userTokens:    deps.UserTokens,
		signer:        deps.Signer,
		admin:         deps.Admin,
		uploader:      deps.Uploader,
		submitter:     deps.Submitter,
		reconciler:    deps.Reconciler,
		tree:          deps.Tree,
		httpClient:    deps.HTTPClient,
		cfg:           cfg,
	}
}

// Run executes the workflow. Job failures and reconciliation failures are
// reported distinctly: a reconciliation error means the remote job already
// succeeded and only the document placement failed.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	// both credentials are required before any remote work; a rejected
	// interactive login aborts the run with nothing submitted
	serviceCred, err := o.serviceTokens(ctx)
	if err != nil {
		return Result{}, err
	}
	if _, err := o.userTokens(ctx); err != nil {
		return Result{}, err
	}

	if err := o.ensureOwner(ctx); err != nil {
		return Result{}, err
	}

	resultName := staging.ResultName(o.cfg.InputPath, o.cfg.ResultExtension)

	staged, err := o.uploader.Stage(ctx, o.cfg.Bucket, o.cfg.InputPath, resultName, o.cfg.SignedURLTTL)
	if err != nil {
		return Result{}, err
	}

	descriptor, err := o.buildDescriptor(staged)
	if err != nil {
		return Result{}, err
	}

	event, err := o.submitter.Submit(ctx, descriptor, serviceCred.AuthorizationHeader())
	if err != nil {
		var failure *domain.JobFailure
		if errors.As(err, &failure) && failure.ReportURL != "" {
			failure.ReportPath = o.downloadReport(ctx, failure.ReportURL, "err")
		}
		return Result{Status: event.Status}, err
	}

	result := Result{Status: event.Status}
	if event.ReportURL != "" {
		result.ReportPath = o.downloadReport(ctx, event.ReportURL, "ok")
	}

	itemID, err := o.reconciler.CreateOrVersion(ctx, o.cfg.FolderID, resultName, staged.OutputRef)
	if err != nil {
		return result, err
	}
	result.ItemID = itemID

	log.Info().
		Str("item_id", itemID).
		Str("result", resultName).
		Msg("Result reconciled into document tree")

	if o.tree != nil {
		nodes, err := o.tree.Build(ctx)
		if err != nil {
			// verification only; the workflow has already succeeded
			log.Warn().Err(err).Msg("Tree verification failed")
		} else {
			result.Tree = nodes
		}
	}

	return result, nil
}

// ensureOwner claims the owner alias when this client has none yet and
// registers the signing public key with the execution service.
func (o *Orchestrator) ensureOwner(ctx context.Context) error {
	nickname, err := o.admin.Nickname(ctx)
	if err != nil {
		return fmt.Errorf("failed to read owner nickname: %w", err)
	}

	owner := nickname
	if owner == "" || owner == o.cfg.ClientID {
		owner = o.cfg.OwnerName
		log.Info().Str("owner", owner).Msg("No nickname for this client yet, claiming one")
	}

	if err := o.admin.RegisterOwner(ctx, owner, o.signer.PublicKey()); err != nil {
		return fmt.Errorf("failed to register owner %q: %w", owner, err)
	}
	return nil
}

func (o *Orchestrator) buildDescriptor(staged staging.StagedRun) (domain.JobDescriptor, error) {
	signature, err := o.signer.Sign(o.cfg.ActivityID)
	if err != nil {
		return domain.JobDescriptor{}, fmt.Errorf("failed to sign activity id: %w", err)
	}

	return domain.JobDescriptor{
		ActivityID: o.cfg.ActivityID,
		Arguments: map[string]domain.JobArgument{
			"HostDwg": {URL: staged.Input.URL, Verb: staged.Input.Verb, Headers: staged.Input.Headers},
			"Result":  {URL: staged.Output.URL, Verb: staged.Output.Verb, Headers: staged.Output.Headers},
		},
		Signatures: domain.JobSignatures{ActivityID: signature},
	}, nil
}

func (o *Orchestrator) downloadReport(ctx context.Context, reportURL, prefix string) string {
	path, err := jobs.DownloadReport(ctx, o.httpClient, reportURL, o.cfg.ReportDir, prefix)
	if err != nil {
		log.Warn().Err(err).Str("url", reportURL).Msg("Report download failed")
		return ""
	}
	return path
}

// Package vcs shells out to git for the two operations the course cache
// needs: cloning a source repository and probing a working copy's head
// revision.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	gitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kursus",
		Subsystem: "vcs",
		Name:      "git_duration_seconds",
		Help:      "Duration of git subprocess invocations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	gitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kursus",
		Subsystem: "vcs",
		Name:      "git_failures_total",
		Help:      "Number of git invocations that resulted in an error",
	}, []string{"command"})
)

// Prober reads the current revision of a working copy.
type Prober interface {
	HeadRevision(ctx context.Context, dir string) (string, error)
}

// Cloner materialises a source repository into a directory.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
}

// Config groups git runner configuration values.
type Config struct {
	Binary  string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// GitRunner implements Prober and Cloner using the git binary.
type GitRunner struct {
	binary  string
	timeout time.Duration
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// NewGitRunner constructs a git-backed runner.
func NewGitRunner(cfg Config) *GitRunner {
	binary := cfg.Binary
	if binary == "" {
		binary = "git"
	}

	return &GitRunner{
		binary:  binary,
		timeout: cfg.Timeout,
		tracer:  otel.Tracer("github.com/noah-isme/kursus-go-api/pkg/vcs"),
		logger:  cfg.Logger.With().Str("component", "git_runner").Logger(),
	}
}

// HeadRevision returns the commit hash the working copy at dir points to.
// Callers that treat probe failures as "no revision" should flatten the
// error themselves; this method reports what actually happened.
func (g *GitRunner) HeadRevision(ctx context.Context, dir string) (string, error) {
	output, err := g.run(ctx, dir, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(output), nil
}

// Clone checks out url into dir. The directory must not already contain a
// repository.
func (g *GitRunner) Clone(ctx context.Context, url, dir string) error {
	if url == "" {
		return errors.New("source url is required")
	}

	_, err := g.run(ctx, "", "clone", url, dir)
	return err
}

func (g *GitRunner) run(parent context.Context, dir string, args ...string) (string, error) {
	command := args[0]

	ctx, span := g.tracer.Start(parent, "vcs.git."+command, trace.WithAttributes(
		attribute.String("git.command", command),
	))
	defer span.End()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	gitDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())

	if err != nil {
		gitFailures.WithLabelValues(command).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "git invocation failed")

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		g.logger.Debug().
			Str("command", command).
			Str("dir", dir).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("git invocation failed")

		return "", fmt.Errorf("git %s: %w: %s", command, err, strings.TrimSpace(stderr.String()))
	}

	span.SetStatus(codes.Ok, "")
	return stdout.String(), nil
}

package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitProvider serves spec documents out of a git repository's object
// store, so the prior version of a spec can be fetched at any revision
// without touching the working tree.
type GitProvider struct {
	path string

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewGitProvider opens an existing local repository (a plain clone or a
// working checkout).
func NewGitProvider(path string) (*GitProvider, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", path, err)
	}
	return &GitProvider{path: path, repo: repo}, nil
}

// CloneGitProvider clones url into dir and returns a provider over the
// clone. Only public repositories are supported; there is no credential
// plumbing here.
func CloneGitProvider(ctx context.Context, url, dir string) (*GitProvider, error) {
	repo, err := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL: url,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository %q: %w", url, err)
	}
	return &GitProvider{path: dir, repo: repo}, nil
}

// Path returns the local path of the underlying repository.
func (p *GitProvider) Path() string {
	return p.path
}

// Fetch reads the named document at HEAD.
func (p *GitProvider) Fetch(ctx context.Context, name string) ([]byte, error) {
	return p.FetchAt(ctx, name, "HEAD")
}

// FetchAt reads the named document at the given revision. Revisions are
// anything git rev-parse accepts: branch names, tags, full or abbreviated
// commit SHAs, HEAD~n.
func (p *GitProvider) FetchAt(ctx context.Context, name, rev string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("document name cannot be empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	hash, err := p.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", rev, err)
	}

	commit, err := p.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
	}

	file, err := commit.File(name)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s at %s", ErrNotFound, name, rev)
		}
		return nil, fmt.Errorf("failed to read %q at %s: %w", name, rev, err)
	}

	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %q at %s: %w", name, rev, err)
	}
	return []byte(content), nil
}

// At returns a Provider view of this repository pinned to one revision,
// for callers that work against the Provider interface.
func (p *GitProvider) At(rev string) Provider {
	return pinnedProvider{provider: p, rev: rev}
}

type pinnedProvider struct {
	provider *GitProvider
	rev      string
}

func (p pinnedProvider) Fetch(ctx context.Context, name string) ([]byte, error) {
	return p.provider.FetchAt(ctx, name, p.rev)
}

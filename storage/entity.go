// Package storage persists users and project records in NATS JetStream KV buckets.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// Bucket names.
const (
	BucketUsers    = "CELLO_USERS"
	BucketProjects = "CELLO_PROJECTS"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateName reports whether name can be used as a user or project name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProjectStatus tracks where a project is in the specify/execute cycle.
type ProjectStatus string

const (
	ProjectStatusCreated   ProjectStatus = "created"
	ProjectStatusSpecified ProjectStatus = "specified"
	ProjectStatusRunning   ProjectStatus = "running"
	ProjectStatusComplete  ProjectStatus = "complete"
	ProjectStatusFailed    ProjectStatus = "failed"
)

// LibraryRecord describes the library a project was last specified with.
type LibraryRecord struct {
	Kind       string `json:"kind"`
	TargetData string `json:"target_data,omitempty"`
	Registry   string `json:"registry,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// ProjectRecord is the stored metadata of a project. Project files live on disk.
type ProjectRecord struct {
	ID          string         `json:"id"`
	Owner       string         `json:"owner"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      ProjectStatus  `json:"status"`
	Library     *LibraryRecord `json:"library,omitempty"`
	LastRunID   string         `json:"last_run_id,omitempty"`
	ExitCode    *int           `json:"exit_code,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Key returns the KV key of the project.
func (p *ProjectRecord) Key() string {
	return projectKey(p.Owner, p.Name)
}

func projectKey(owner, name string) string {
	return owner + "." + name
}

// Store provides user and project storage backed by NATS KV.
type Store struct {
	users    jetstream.KeyValue
	projects jetstream.KeyValue
}

// NewStore creates a new Store with the given JetStream context.
// It creates the necessary KV buckets if they don't exist.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	users, err := getOrCreateBucket(ctx, js, BucketUsers)
	if err != nil {
		return nil, fmt.Errorf("create users bucket: %w", err)
	}

	projects, err := getOrCreateBucket(ctx, js, BucketProjects)
	if err != nil {
		return nil, fmt.Errorf("create projects bucket: %w", err)
	}

	return &Store{
		users:    users,
		projects: projects,
	}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Cello %s storage", strings.ToLower(strings.TrimPrefix(name, "CELLO_"))),
		History:     5,
	})
}

// CreateUser stores a new user. The username must not be taken.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if err := ValidateName(u.Username); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	if _, err := s.users.Create(ctx, u.Username, data); err != nil {
		if isExists(err) {
			return fmt.Errorf("user %s: %w", u.Username, ErrExists)
		}
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by username.
func (s *Store) GetUser(ctx context.Context, username string) (*User, error) {
	if err := ValidateName(username); err != nil {
		return nil, ErrNotFound
	}

	entry, err := s.users.Get(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	var u User
	if err := json.Unmarshal(entry.Value(), &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

// CreateProject stores a new project record. The owner/name pair must not be taken.
func (s *Store) CreateProject(ctx context.Context, p *ProjectRecord) error {
	if err := validateProject(p.Owner, p.Name); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = ProjectStatusCreated
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	if _, err := s.projects.Create(ctx, p.Key(), data); err != nil {
		if isExists(err) {
			return fmt.Errorf("project %s: %w", p.Name, ErrExists)
		}
		return fmt.Errorf("store project: %w", err)
	}
	return nil
}

// GetProject retrieves a project record.
func (s *Store) GetProject(ctx context.Context, owner, name string) (*ProjectRecord, error) {
	if err := validateProject(owner, name); err != nil {
		return nil, ErrNotFound
	}

	entry, err := s.projects.Get(ctx, projectKey(owner, name))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	var p ProjectRecord
	if err := json.Unmarshal(entry.Value(), &p); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	return &p, nil
}

// UpdateProject overwrites an existing project record.
func (s *Store) UpdateProject(ctx context.Context, p *ProjectRecord) error {
	if _, err := s.GetProject(ctx, p.Owner, p.Name); err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	if _, err := s.projects.Put(ctx, p.Key(), data); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// DeleteProject removes a project record.
func (s *Store) DeleteProject(ctx context.Context, owner, name string) error {
	if _, err := s.GetProject(ctx, owner, name); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectKey(owner, name)); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// ListProjects returns the projects of owner sorted by name.
func (s *Store) ListProjects(ctx context.Context, owner string) ([]*ProjectRecord, error) {
	keys, err := s.projects.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list project keys: %w", err)
	}

	prefix := owner + "."
	projects := make([]*ProjectRecord, 0)
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		entry, err := s.projects.Get(ctx, key)
		if err != nil {
			continue
		}
		var p ProjectRecord
		if err := json.Unmarshal(entry.Value(), &p); err != nil {
			continue
		}
		projects = append(projects, &p)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})
	return projects, nil
}

func validateProject(owner, name string) error {
	if err := ValidateName(owner); err != nil {
		return err
	}
	return ValidateName(name)
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) ||
		(err != nil && strings.Contains(err.Error(), "key not found"))
}

func isExists(err error) bool {
	return errors.Is(err, jetstream.ErrKeyExists) ||
		(err != nil && strings.Contains(err.Error(), "wrong last sequence"))
}

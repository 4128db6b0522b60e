package projectapi

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cellocad/cello-webapp/auth"
	"github.com/cellocad/cello-webapp/export"
	"github.com/cellocad/cello-webapp/library"
	"github.com/cellocad/cello-webapp/project"
	"github.com/cellocad/cello-webapp/storage"
	"github.com/cellocad/cello-webapp/targetdata"
)

// RegisterHTTPHandlers registers all project-api HTTP handlers under the given prefix.
// The prefix should be the path segment without a trailing slash (e.g. "api").
// Handlers are registered as:
//
//	POST   <prefix>/auth/signup
//	POST   <prefix>/auth/login
//	GET    <prefix>/projects
//	POST   <prefix>/projects
//	GET    <prefix>/projects/{name}
//	DELETE <prefix>/projects/{name}
//	POST   <prefix>/projects/{name}/specify
//	POST   <prefix>/projects/{name}/execute
//	GET    <prefix>/projects/{name}/files
//	GET    <prefix>/projects/{name}/files/{file...}
//	GET    <prefix>/projects/{name}/library
//	GET    <prefix>/targetdata
//	GET    <prefix>/health
func (c *Component) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	prefix = normalisePrefix(prefix)

	mux.HandleFunc("POST "+prefix+"auth/signup", c.handleSignup)
	mux.HandleFunc("POST "+prefix+"auth/login", c.handleLogin)
	mux.HandleFunc("GET "+prefix+"projects", c.handleListProjects)
	mux.HandleFunc("POST "+prefix+"projects", c.handleCreateProject)
	mux.HandleFunc("GET "+prefix+"projects/{name}", c.handleGetProject)
	mux.HandleFunc("DELETE "+prefix+"projects/{name}", c.handleDeleteProject)
	mux.HandleFunc("POST "+prefix+"projects/{name}/specify", c.handleSpecify)
	mux.HandleFunc("POST "+prefix+"projects/{name}/execute", c.handleExecute)
	mux.HandleFunc("GET "+prefix+"projects/{name}/files", c.handleListFiles)
	mux.HandleFunc("GET "+prefix+"projects/{name}/files/{file...}", c.handleGetFile)
	mux.HandleFunc("GET "+prefix+"projects/{name}/library", c.handleLibrary)
	mux.HandleFunc("GET "+prefix+"targetdata", c.handleTargetData)
	mux.HandleFunc("GET "+prefix+"health", c.handleHealth)
}

// Handler returns the complete API: handlers under the configured prefix,
// /metrics, bearer authentication, body limits and request metrics.
func (c *Component) Handler() http.Handler {
	mux := http.NewServeMux()
	c.RegisterHTTPHandlers(c.config.Prefix, mux)
	mux.Handle("GET /metrics", c.metrics.Handler())

	prefix := normalisePrefix(c.config.Prefix)
	mw := auth.NewMiddleware(c.issuer, c.logger,
		prefix+"auth/signup",
		prefix+"auth/login",
		prefix+"health",
		"/metrics",
	)
	return c.metrics.InstrumentHandler(c.limitBody(mw.Handler(mux)))
}

func normalisePrefix(prefix string) string {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}
	return prefix
}

func (c *Component) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, c.config.MaxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

// ----------------------------------------------------------------------------
// Accounts
// ----------------------------------------------------------------------------

// Credentials is the body of signup and login requests.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// TokenResponse is returned by signup and login.
type TokenResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresIn int64  `json:"expires_in"`
}

func (c *Component) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	if err := storage.ValidateName(creds.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		c.internalError(w, "Failed to hash password", err)
		return
	}

	user := &storage.User{
		ID:           uuid.New().String(),
		Username:     creds.Username,
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrExists) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		c.internalError(w, "Failed to create user", err)
		return
	}

	c.logger.Info("User signed up", "username", user.Username)
	c.writeToken(w, http.StatusCreated, user.Username)
}

func (c *Component) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	user, err := c.store.GetUser(r.Context(), creds.Username)
	if err != nil && !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrInvalidName) {
		c.internalError(w, "Failed to load user", err)
		return
	}
	if user == nil || auth.CheckPassword(user.PasswordHash, creds.Password) != nil {
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	c.writeToken(w, http.StatusOK, user.Username)
}

func (c *Component) writeToken(w http.ResponseWriter, status int, username string) {
	token, err := c.issuer.Issue(username)
	if err != nil {
		c.internalError(w, "Failed to issue token", err)
		return
	}
	writeJSON(w, status, TokenResponse{
		Token:     token,
		Username:  username,
		ExpiresIn: int64(c.issuer.TTL().Seconds()),
	})
}

// ----------------------------------------------------------------------------
// Projects
// ----------------------------------------------------------------------------

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c *Component) handleListProjects(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	records, err := c.store.ListProjects(r.Context(), owner)
	if err != nil {
		c.internalError(w, "Failed to list projects", err)
		return
	}
	if records == nil {
		records = []*storage.ProjectRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": records})
}

func (c *Component) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := storage.ValidateName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	rec := &storage.ProjectRecord{
		ID:          uuid.New().String(),
		Owner:       owner,
		Name:        req.Name,
		Description: req.Description,
		Status:      storage.ProjectStatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.store.CreateProject(r.Context(), rec); err != nil {
		if errors.Is(err, storage.ErrExists) {
			writeError(w, http.StatusConflict, "project already exists")
			return
		}
		c.internalError(w, "Failed to create project record", err)
		return
	}

	if err := c.projects.Create(r.Context(), owner, req.Name); err != nil {
		// The record is useless without its directory.
		if derr := c.store.DeleteProject(context.WithoutCancel(r.Context()), owner, req.Name); derr != nil {
			c.logger.Warn("Failed to roll back project record", "project", req.Name, "error", derr)
		}
		if errors.Is(err, project.ErrProjectExists) {
			writeError(w, http.StatusConflict, "project already exists")
			return
		}
		c.internalError(w, "Failed to create project directory", err)
		return
	}

	c.logger.Info("Project created", "owner", owner, "project", req.Name)
	writeJSON(w, http.StatusCreated, rec)
}

func (c *Component) handleGetProject(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.loadProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (c *Component) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.loadProject(w, r)
	if !ok {
		return
	}
	if err := c.store.DeleteProject(r.Context(), rec.Owner, rec.Name); err != nil {
		c.internalError(w, "Failed to delete project record", err)
		return
	}
	if err := c.projects.Delete(r.Context(), rec.Owner, rec.Name); err != nil && !errors.Is(err, project.ErrProjectNotFound) {
		c.internalError(w, "Failed to delete project directory", err)
		return
	}

	c.logger.Info("Project deleted", "owner", rec.Owner, "project", rec.Name)
	w.WriteHeader(http.StatusNoContent)
}

// loadProject returns the caller's project named in the path, writing an
// error response when there is none.
func (c *Component) loadProject(w http.ResponseWriter, r *http.Request) (*storage.ProjectRecord, bool) {
	owner, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	rec, err := c.store.GetProject(r.Context(), owner, r.PathValue("name"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			writeError(w, http.StatusNotFound, "project not found")
			return nil, false
		}
		c.internalError(w, "Failed to load project", err)
		return nil, false
	}
	return rec, true
}

// ----------------------------------------------------------------------------
// POST /projects/{name}/specify
// ----------------------------------------------------------------------------

// SpecifyResponse is returned by a successful specify request.
type SpecifyResponse struct {
	Project       *storage.ProjectRecord `json:"project"`
	Specification *project.Record        `json:"specification"`
	Library       library.Stats          `json:"library"`
}

func (c *Component) handleSpecify(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.loadProject(w, r)
	if !ok {
		return
	}
	var spec project.Specification
	if !decodeBody(w, r, &spec) {
		return
	}
	if err := spec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	files, lib, err := c.resolver.Resolve(r.Context(), spec.Library)
	c.metrics.RecordBuild(spec.Library.Kind, time.Since(start), lib, err)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			c.logger.Debug("Specify canceled", "project", rec.Name)
		case project.IsUnresolvable(err):
			c.logger.Error("Library build failed",
				"owner", rec.Owner,
				"project", rec.Name,
				"kind", spec.Library.Kind,
				"collection", spec.Library.Collection,
				"error", err)
			writeError(w, http.StatusUnprocessableEntity, "unable to build library")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	written, err := c.projects.Specify(r.Context(), rec.Owner, rec.Name, &spec, files)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrInvalidSpecification):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, project.ErrProjectNotFound):
			writeError(w, http.StatusNotFound, "project not found")
		default:
			c.internalError(w, "Failed to write specification", err)
		}
		return
	}

	rec.Status = storage.ProjectStatusSpecified
	rec.Library = &storage.LibraryRecord{
		Kind:       spec.Library.Kind,
		TargetData: spec.Library.TargetData,
		Registry:   spec.Library.Registry,
		Collection: spec.Library.Collection,
	}
	rec.ExitCode = nil
	rec.LastRunID = ""
	if !c.saveProject(w, r, rec) {
		return
	}

	var stats library.Stats
	if lib != nil {
		stats = lib.Stats()
	}
	c.logger.Info("Project library built",
		"owner", rec.Owner,
		"project", rec.Name,
		"kind", spec.Library.Kind,
		"gates", stats.Gates,
		"parts", stats.Parts)
	writeJSON(w, http.StatusOK, SpecifyResponse{Project: rec, Specification: written, Library: stats})
}

// ----------------------------------------------------------------------------
// POST /projects/{name}/execute
// ----------------------------------------------------------------------------

// ExecuteResponse is returned by an execute request that ran the compiler.
type ExecuteResponse struct {
	Project *storage.ProjectRecord `json:"project"`
	Run     *project.RunResult     `json:"run"`
}

func (c *Component) handleExecute(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.loadProject(w, r)
	if !ok {
		return
	}

	rec.Status = storage.ProjectStatusRunning
	if !c.saveProject(w, r, rec) {
		return
	}

	result, err := c.projects.Execute(r.Context(), rec.Owner, rec.Name, c.compiler)
	var exitCode int
	var duration time.Duration
	if result != nil {
		exitCode, duration = result.ExitCode, result.Duration
	}
	if !errors.Is(err, project.ErrNotSpecified) {
		c.metrics.RecordCompilerRun(exitCode, duration, err)
	}

	// Status updates outlive a client that went away mid-run.
	ctx := context.WithoutCancel(r.Context())
	switch {
	case err == nil:
		rec.Status = storage.ProjectStatusComplete
		if !result.Succeeded() {
			rec.Status = storage.ProjectStatusFailed
		}
		rec.LastRunID = result.RunID
		rec.ExitCode = &result.ExitCode
	case errors.Is(err, project.ErrNotSpecified):
		rec.Status = storage.ProjectStatusCreated
	default:
		rec.Status = storage.ProjectStatusFailed
		if result != nil {
			rec.LastRunID = result.RunID
			rec.ExitCode = &result.ExitCode
		}
	}
	rec.UpdatedAt = time.Now().UTC()
	if uerr := c.store.UpdateProject(ctx, rec); uerr != nil {
		c.logger.Error("Failed to record run", "project", rec.Name, "error", uerr)
	}

	if err != nil {
		switch {
		case errors.Is(err, project.ErrNotSpecified):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, project.ErrProjectNotFound):
			writeError(w, http.StatusNotFound, "project not found")
		case errors.Is(err, project.ErrCompilerTimeout):
			writeError(w, http.StatusGatewayTimeout, err.Error())
		case errors.Is(err, context.Canceled):
			c.logger.Debug("Execute canceled", "project", rec.Name)
		default:
			c.internalError(w, "Compiler run failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, ExecuteResponse{Project: rec, Run: result})
}

// saveProject stamps and stores rec, writing an error response on failure.
func (c *Component) saveProject(w http.ResponseWriter, r *http.Request, rec *storage.ProjectRecord) bool {
	rec.UpdatedAt = time.Now().UTC()
	if err := c.store.UpdateProject(r.Context(), rec); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return false
		}
		c.internalError(w, "Failed to update project", err)
		return false
	}
	return true
}

// ----------------------------------------------------------------------------
// Project files
// ----------------------------------------------------------------------------

func (c *Component) handleListFiles(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.loadProject(w, r)
	if !ok {
		return
	}
	files, err := c.projects.Files(rec.Owner, rec.Name)
	if err != nil {
		c.projectFileError(w, err)
		return
	}
	if files == nil {
		files = []project.FileInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (c *Component) handleGetFile(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.loadProject(w, r)
	if !ok {
		return
	}
	name := r.PathValue("file")
	data, err := c.projects.ReadFile(rec.Owner, rec.Name, name)
	if err != nil {
		c.projectFileError(w, err)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (c *Component) projectFileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, project.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, project.ErrFileNotFound), errors.Is(err, project.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		c.internalError(w, "Failed to read project files", err)
	}
}

// ----------------------------------------------------------------------------
// GET /projects/{name}/library
// ----------------------------------------------------------------------------

// handleLibrary returns the project library as UCF JSON or as RDF. It reads
// the library file directly, so the response always matches the last specify.
func (c *Component) handleLibrary(w http.ResponseWriter, r *http.Request) {
	rec, ok := c.loadProject(w, r)
	if !ok {
		return
	}

	formatName := r.URL.Query().Get("format")
	if formatName == "" {
		formatName = "ucf"
	}
	var format export.Format
	if !strings.EqualFold(formatName, "ucf") {
		f, err := export.ParseFormat(formatName)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	data, err := c.projects.ReadFile(rec.Owner, rec.Name, c.projects.LibraryFile())
	if err != nil {
		if errors.Is(err, project.ErrFileNotFound) {
			writeError(w, http.StatusNotFound, "project has no library")
			return
		}
		c.projectFileError(w, err)
		return
	}

	if format == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	lib, err := library.ParseUCF(data)
	if err != nil {
		c.logger.Debug("Project library not exportable", "project", rec.Name, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "project library cannot be exported as "+string(format))
		return
	}
	out, err := c.exporter.Export(lib, format)
	if err != nil {
		c.internalError(w, "Failed to export library", err)
		return
	}
	info, _ := export.GetFormatInfo(format)
	w.Header().Set("Content-Type", info.MIMEType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// ----------------------------------------------------------------------------
// GET /targetdata, GET /health
// ----------------------------------------------------------------------------

func (c *Component) handleTargetData(w http.ResponseWriter, r *http.Request) {
	files := []targetdata.File{}
	if c.catalog != nil {
		if kind := r.URL.Query().Get("kind"); kind != "" {
			files = append(files, c.catalog.ListKind(targetdata.Kind(kind))...)
		} else {
			files = append(files, c.catalog.List()...)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (c *Component) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := c.Health()
	status := http.StatusOK
	if !health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	username := auth.Username(r.Context())
	if username == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return username, true
}

// decodeBody decodes the JSON request body into dst, writing a 400 or 413
// response on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (c *Component) internalError(w http.ResponseWriter, msg string, err error) {
	c.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON sets Content-Type, writes the status code and encodes v as JSON.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

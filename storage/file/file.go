// Package file implements storage.Repository on top of three flat JSON
// files under a per-application configuration directory, with atomic-swap
// write semantics: every mutation to a durable kind applies in memory
// first, serializes and writes the whole collection to its file, and
// undoes the in-memory change if the write failed — so memory and disk
// agree after every call returns, success or failure.
//
// Purpose: Default, dependency-free Repository backend.
// Domain: Storage
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/profile"
	"github.com/onlivfe/corevr/storage"
)

const (
	authFile     = "auth.json"
	profilesFile = "profiles.json"
	mappingsFile = "mappings.json"
)

// WriteFileFunc persists data at path; Repository calls it while holding
// the writer lock for the durable kind being mutated. Tests substitute a
// failing implementation to exercise the atomic-swap rollback scenario.
type WriteFileFunc func(path string, data []byte) error

// DefaultWriteFile writes to a temporary file in the same directory and
// renames it over the target, the crash-safety strengthening spec.md §9
// calls out as a free addition (os.Rename is atomic on the same
// filesystem).
func DefaultWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

type mappingPair struct {
	Account platform.AccountID
	Profile profile.ID
}

// Repository is the file-backed storage.Repository implementation. Each
// kind is guarded by its own sync.RWMutex; cross-kind operations acquire
// locks in the fixed order authentications < profiles < mappings < other
// to preclude deadlock.
type Repository struct {
	dir       string
	writeFile WriteFileFunc

	authMu  sync.RWMutex
	authByID map[string]auth.Authentication

	profilesMu sync.RWMutex
	profiles   map[profile.ID]profile.Profile

	mappingsMu sync.RWMutex
	mappings   map[mappingPair]struct{}

	accountsMu sync.RWMutex
	accounts   map[string]platform.DataAndMetadata[platform.Account]

	friendsMu sync.RWMutex
	friends   map[string]platform.DataAndMetadata[platform.Friend]

	instancesMu sync.RWMutex
	instances   map[string]platform.DataAndMetadata[platform.Instance]

	worldsMu sync.RWMutex
	worlds   map[string]platform.DataAndMetadata[platform.World]

	avatarsMu sync.RWMutex
	avatars   map[string]platform.DataAndMetadata[platform.Avatar]
}

// New constructs a Repository rooted at dir, loading any of the three
// durable files that already exist; an absent file starts its collection
// empty, per spec.md §6.
func New(dir string) (*Repository, error) {
	return NewWithWriter(dir, DefaultWriteFile)
}

// NewWithWriter is New with an injectable WriteFileFunc, used by tests
// that script a write failure.
func NewWithWriter(dir string, writeFile WriteFileFunc) (*Repository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, storage.IOError("open", err)
	}
	r := &Repository{
		dir:        dir,
		writeFile:  writeFile,
		authByID:   map[string]auth.Authentication{},
		profiles:   map[profile.ID]profile.Profile{},
		mappings:   map[mappingPair]struct{}{},
		accounts:   map[string]platform.DataAndMetadata[platform.Account]{},
		friends:    map[string]platform.DataAndMetadata[platform.Friend]{},
		instances:  map[string]platform.DataAndMetadata[platform.Instance]{},
		worlds:     map[string]platform.DataAndMetadata[platform.World]{},
		avatars:    map[string]platform.DataAndMetadata[platform.Avatar]{},
	}
	if err := r.load(authFile, &r.authByID); err != nil {
		return nil, err
	}
	var profileList []profile.Profile
	if err := r.loadList(profilesFile, &profileList); err != nil {
		return nil, err
	}
	for _, p := range profileList {
		r.profiles[p.ID] = p
	}
	var mappingList []mappingPair
	if err := r.loadList(mappingsFile, &mappingList); err != nil {
		return nil, err
	}
	for _, m := range mappingList {
		r.mappings[m] = struct{}{}
	}
	return r, nil
}

func (r *Repository) load(name string, into any) error {
	path := filepath.Join(r.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return storage.IOError("load:"+name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return storage.SerializationError("load:"+name, err)
	}
	return nil
}

func (r *Repository) loadList(name string, into any) error {
	return r.load(name, into)
}

// persistAuth serializes the whole authentications map and writes it,
// the second step of the atomic-swap rule for this kind.
func (r *Repository) persistAuth() error {
	data, err := json.Marshal(r.authByID)
	if err != nil {
		return storage.SerializationError("persist:auth", err)
	}
	if err := r.writeFile(filepath.Join(r.dir, authFile), data); err != nil {
		return storage.IOError("persist:auth", err)
	}
	return nil
}

func (r *Repository) persistProfiles() error {
	list := make([]profile.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		list = append(list, p)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return storage.SerializationError("persist:profiles", err)
	}
	if err := r.writeFile(filepath.Join(r.dir, profilesFile), data); err != nil {
		return storage.IOError("persist:profiles", err)
	}
	return nil
}

func (r *Repository) persistMappings() error {
	list := make([]mappingPair, 0, len(r.mappings))
	for m := range r.mappings {
		list = append(list, m)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return storage.SerializationError("persist:mappings", err)
	}
	if err := r.writeFile(filepath.Join(r.dir, mappingsFile), data); err != nil {
		return storage.IOError("persist:mappings", err)
	}
	return nil
}

var _ storage.Repository = (*Repository)(nil)

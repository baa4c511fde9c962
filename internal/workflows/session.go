package workflows

import (
	"context"
	"fmt"

	"github.com/guilt/groupenc/internal/audit"
	"github.com/guilt/groupenc/internal/configs"
	"github.com/guilt/groupenc/internal/envelope"
	kerrors "github.com/guilt/groupenc/internal/errors"
	"github.com/guilt/groupenc/internal/identity"
	logger "github.com/guilt/groupenc/internal/logging"
	"github.com/guilt/groupenc/internal/utils"
	"github.com/guilt/groupenc/internal/vault"
)

// Env carries what every workflow needs to reach the vault.
type Env struct {
	// Config holds key sizes, encodings and file paths. Paths should already
	// be expanded.
	Config *configs.Config

	// KeyMaterial, when set, is used instead of the configured key files.
	KeyMaterial []byte

	// Passphrase is called when a protected OpenSSH key is loaded. May be nil.
	Passphrase func() ([]byte, error)

	Logger logger.Logger
}

// session is an opened vault and the identity bound to it.
type session struct {
	env   Env
	id    *identity.Identity
	vault *vault.Vault

	// Set when this session generated keys or created the vault file.
	generatedKeys bool
	createdVault  bool
}

// open resolves the caller's identity and opens (or bootstraps) the vault.
func (e Env) open(ctx context.Context) (*session, error) {
	if e.Config == nil {
		return nil, fmt.Errorf("%w: no configuration", kerrors.ErrInvalidConfig)
	}

	codec, err := envelope.New(e.Config)
	if err != nil {
		return nil, err
	}

	loadOpts := identity.LoadOptions{
		KeyMaterial:    e.KeyMaterial,
		PrivateKeyFile: e.Config.PrivateKeyFile,
		PublicKeyFile:  e.Config.PublicKeyFile,
		KeyBits:        e.Config.KeyBits,
		Passphrase:     e.Passphrase,
	}
	generate := identity.NeedsBootstrap(loadOpts)
	if generate {
		e.Logger.Infof("Generating a %d-bit identity, this will take some time", e.Config.KeyBits)
	}

	id, err := identity.Load(loadOpts)
	if err != nil {
		return nil, err
	}
	e.Logger.Debugf("Loaded identity %s (private key: %v)", id.ID(), id.HasPrivateKey())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := !utils.FileExists(e.Config.VaultFile)
	if created {
		e.Logger.Infof("Bootstrapping vault %s", e.Config.VaultFile)
	}
	v, err := vault.Open(id, e.Config.VaultFile, codec)
	if err != nil {
		return nil, err
	}

	s := &session{env: e, id: id, vault: v, generatedKeys: generate, createdVault: created}
	if created {
		s.audit(audit.OpBootstrap, "", 0)
	}
	return s, nil
}

// save persists the vault.
func (s *session) save() error {
	s.env.Logger.Debugf("Saving vault %s", s.env.Config.VaultFile)
	return s.vault.Save(s.env.Config.VaultFile)
}

// audit records op in the vault's audit log when enabled. Failures are
// reported as warnings and never fail the workflow.
func (s *session) audit(op, target string, count int) {
	if !s.env.Config.Audit {
		return
	}
	entry := audit.NewEntry(op, s.id.ID())
	entry.Target = target
	entry.Count = count
	if err := audit.Log(s.env.Config.VaultFile, entry); err != nil {
		s.env.Logger.Warnf("audit log not written: %v", err)
	}
}

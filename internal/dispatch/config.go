package dispatch

import (
	"time"

	"github.com/rentscore/rentscore/pkg/config"
)

// FromConfig builds the engine described by cfg. Without a remote URL the
// local engine is used directly; with one, the remote engine is primary and
// the local engine is the fallback.
func FromConfig(cfg config.EngineConfig, concurrency int, opts ...Option) Engine {
	local := NewLocal(concurrency)
	if cfg.RemoteURL == "" {
		return New(local, nil, opts...)
	}
	remote := NewRemote(cfg.RemoteURL, time.Duration(cfg.TimeoutSecs)*time.Second)
	return New(remote, local, opts...)
}

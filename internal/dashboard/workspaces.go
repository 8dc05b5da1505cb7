package dashboard

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/api/dto"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/cache"
	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/observability/logger"
	tokens "github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/security/token"
)

// WorkspaceCache guarda la lista de workspaces de cada token por poco tiempo y
// colapsa los fetch concurrentes del mismo token en uno solo.
type WorkspaceCache struct {
	cache cache.Client // nil = solo singleflight
	ttl   time.Duration
	group singleflight.Group
}

func NewWorkspaceCache(c cache.Client, ttl time.Duration) *WorkspaceCache {
	return &WorkspaceCache{cache: c, ttl: ttl}
}

// La key lleva el hash del token, nunca el token.
func workspaceKey(token string) string {
	return "workspaces:" + tokens.SHA256Hex(token)[:32]
}

// List devuelve la lista cacheada o la pide a svc.
func (wc *WorkspaceCache) List(ctx context.Context, token string, svc api.WorkspaceService) ([]dto.Workspace, error) {
	key := workspaceKey(token)
	if wc.cache != nil {
		if b, err := wc.cache.Get(ctx, key); err == nil {
			var list []dto.Workspace
			if json.Unmarshal(b, &list) == nil {
				return list, nil
			}
		}
	}

	v, err, _ := wc.group.Do(key, func() (any, error) {
		list, err := svc.GetUserWorkspaces(ctx)
		if err != nil {
			return nil, err
		}
		if wc.cache != nil && wc.ttl > 0 {
			b, _ := json.Marshal(list)
			if err := wc.cache.Set(ctx, key, b, wc.ttl); err != nil {
				logger.From(ctx).Warn("workspace cache set failed", logger.Component("dashboard"), logger.Err(err))
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]dto.Workspace)), nil
}

// Invalidate descarta la lista del token (después de crear/editar/borrar).
func (wc *WorkspaceCache) Invalidate(ctx context.Context, token string) {
	if wc.cache == nil {
		return
	}
	if err := wc.cache.Delete(ctx, workspaceKey(token)); err != nil && !cache.IsNotFound(err) {
		logger.From(ctx).Warn("workspace cache delete failed", logger.Component("dashboard"), logger.Err(err))
	}
}

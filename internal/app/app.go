// Package app wires the shared dependencies commands consume.
package app

import (
	"github.com/taskflowhq/taskflow/internal/api"
	"github.com/taskflowhq/taskflow/internal/core/config"
	"github.com/taskflowhq/taskflow/internal/core/creds"
	"github.com/taskflowhq/taskflow/internal/data/cache"
	"github.com/taskflowhq/taskflow/internal/data/db"
)

// App is the central entry point for all operations. Commands and the TUI
// consume App instead of cherry-picking raw dependencies.
type App struct {
	Config *config.Config
	API    *api.Client
	Creds  *creds.Store
	DB     *db.DB

	Messages      *cache.MessageCache
	Notifications *cache.NotificationCache
}

// NewApp constructs an App from explicit dependencies. A nil database
// leaves the caches nil; callers treat a nil cache as "no local state".
func NewApp(cfg *config.Config, client *api.Client, credStore *creds.Store, database *db.DB) *App {
	a := &App{
		Config: cfg,
		API:    client,
		Creds:  credStore,
		DB:     database,
	}
	if database != nil {
		a.Messages = cache.NewMessageCache(database)
		a.Notifications = cache.NewNotificationCache(database)
	}
	return a
}

// Identity returns the signed-in user's profile, or creds.ErrNoIdentity.
func (a *App) Identity() (creds.Identity, error) {
	return a.Creds.Identity()
}

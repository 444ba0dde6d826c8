package catalog

import (
	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/cache"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/remote"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/service"
	"github.com/railzwaylabs/catalogadmin/internal/config"
	"go.uber.org/fx"
)

// Module wires the engine. The including app supplies a domain.Notifier and a domain.Confirmer.
var Module = fx.Module("catalog",
	fx.Provide(registerSnowflake),
	fx.Provide(cache.Provide),
	fx.Provide(remote.New),
	fx.Provide(service.New),
)

func registerSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.Remote.NodeID)
}

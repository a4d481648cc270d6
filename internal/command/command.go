// Package command 提供 dashgen 子命令共用的默认值。
package command

import "github.com/lwmacct/261016-go-pkg-dashgen/internal/config"

// Defaults 默认配置 - 单一来源 (Single Source of Truth)
var Defaults = config.DefaultConfig()

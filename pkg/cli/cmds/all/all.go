// Package all imports all shell commands.
package all

import (
	_ "github.com/robotalks/tmon/pkg/cli/cmds/bus"
	_ "github.com/robotalks/tmon/pkg/cli/cmds/codec"
	_ "github.com/robotalks/tmon/pkg/cli/cmds/store"
)

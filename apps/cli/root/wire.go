package root

import (
	tenantcmd "github.com/ribeiromendes5014-design/netfliz/apps/cli/cmd/tenant"
)

func init() {
	Root().AddCommand(tenantcmd.Command())
}
